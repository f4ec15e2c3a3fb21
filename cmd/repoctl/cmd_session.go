package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/uema/repositorio/internal/policy"
)

func init() {
	register(command{name: "login", summary: "inicia a sessão", screen: policy.PathLogin, run: runLogin})
	register(command{name: "logout", summary: "encerra a sessão", run: runLogout})
	register(command{name: "whoami", summary: "mostra o usuário da sessão", run: runWhoami})
	register(command{name: "nav", summary: "mostra para onde uma tela leva com a sessão atual", run: runNav})
	register(command{name: "menu", summary: "lista as telas visíveis para o perfil", run: runMenu})
	register(command{name: "cadastro", summary: "pede uma conta pelo cadastro público", screen: policy.PathRegister, run: runRegister})
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("login")
	email := fs.StringP("email", "e", "", "e-mail da conta")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*email) == "" {
		value, err := a.readLine("E-mail: ")
		if err != nil {
			return err
		}
		*email = value
	}
	senha, err := a.readPassword("Senha: ")
	if err != nil {
		return err
	}

	sess, err := a.store.Login(ctx, *email, senha)
	if err != nil {
		return err
	}
	a.notice("sessão iniciada como %s (%s)", sess.User.Email, sess.User.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.notice("sessão encerrada")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("whoami")
	remote := fs.Bool("remoto", false, "confere o perfil no backend")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess := a.store.Current()
	if !sess.Authenticated() {
		return &redirectError{from: "whoami", to: policy.PathLogin}
	}
	if *remote {
		user, err := a.api.Me(ctx, sess.Token)
		if err != nil {
			return err
		}
		return a.printJSON(user)
	}
	return a.printJSON(sess.User)
}

func runNav(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: uso repoctl nav <tela>", errUsage)
	}
	dest, redirected := policy.Navigate(args[0], a.store.Current())
	return a.printJSON(map[string]any{
		"tela":          args[0],
		"destino":       dest,
		"redirecionado": redirected,
	})
}

func runMenu(ctx context.Context, a *app, args []string) error {
	return a.printJSON(policy.VisibleMenu(policy.DefaultMenu, a.store.Current().User))
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("cadastro")
	nome := fs.StringP("nome", "n", "", "nome completo")
	email := fs.StringP("email", "e", "", "e-mail")
	if err := fs.Parse(args); err != nil {
		return err
	}

	senha, err := a.readPassword("Senha: ")
	if err != nil {
		return err
	}

	user, err := a.users.Register(ctx, *nome, *email, senha)
	if err != nil {
		return err
	}
	a.notice("cadastro recebido; a conta será liberada por um administrador")
	return a.printJSON(user)
}
