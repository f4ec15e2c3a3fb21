package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/confirm"
)

func (a *app) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("repoctl "+name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// readLine pergunta no stderr e lê uma linha da entrada.
func (a *app) readLine(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	if a.lines == nil {
		a.lines = bufio.NewReader(a.in)
	}
	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword lê a senha sem eco quando a entrada é um terminal.
func (a *app) readPassword(prompt string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.errOut, prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("lendo senha: %w", err)
		}
		return string(raw), nil
	}
	return a.readLine(prompt)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: informe exatamente um id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "id inválido: "+args[0])
	}
	return id, nil
}

// describe transforma os erros tipados numa mensagem curta para o operador.
func describe(err error) string {
	var validation *apperr.ValidationError
	switch {
	case errors.Is(err, confirm.ErrDeclined):
		return "operação cancelada"
	case apperr.IsAuth(err, apperr.InvalidCredentials):
		return "e-mail ou senha inválidos"
	case apperr.IsAuth(err, apperr.Network), apperr.IsUnreachable(err):
		return "backend inacessível: " + err.Error()
	case errors.As(err, &validation):
		return "dados inválidos: " + validation.Error()
	}
	return err.Error()
}
