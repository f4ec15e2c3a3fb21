// repoctl é o cliente de terminal do repositório de documentos: mantém a sessão,
// aplica as regras de acesso de cada tela e fala com o backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/uema/repositorio/internal/config"
	"github.com/uema/repositorio/internal/confirm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		var redirected *redirectError
		if errors.As(err, &redirected) {
			fmt.Fprintln(os.Stderr, redirected.Error())
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "erro: %s\n", describe(err))
		os.Exit(1)
	}
}

type globalFlags struct {
	yes   bool
	debug bool
}

type command struct {
	name    string
	summary string
	// screen é a tela que o comando abre; vazio dispensa a checagem de acesso.
	screen string
	run    func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{}

func register(c command) {
	commands[c.name] = c
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var flags globalFlags
	flagSet := pflag.NewFlagSet("repoctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(stderr)
	flagSet.BoolVarP(&flags.yes, "sim", "y", false, "confirma automaticamente operações destrutivas")
	flagSet.BoolVar(&flags.debug, "debug", false, "logs detalhados no stderr")
	flagSet.Usage = func() { usage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		usage(stderr, flagSet)
		return errors.New("informe um comando")
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		usage(stderr, flagSet)
		return fmt.Errorf("comando desconhecido %q", rest[0])
	}

	level := zerolog.WarnLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	a, err := newApp(ctx, cfg, flags, logger, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.screen != "" {
		if err := a.enter(cmd.screen); err != nil {
			return err
		}
	}
	err = cmd.run(ctx, a, rest[1:])
	if errors.Is(err, confirm.ErrDeclined) {
		a.notice("operação cancelada")
		return nil
	}
	return err
}

func usage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(w, "uso: repoctl [--sim] [--debug] <comando> [argumentos]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "comandos:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "opções globais:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
