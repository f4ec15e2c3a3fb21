package main

import (
	"context"
	"fmt"

	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/policy"
)

func init() {
	register(command{name: "aprovacoes", summary: "listar | aprovar | rejeitar documentos pendentes", screen: policy.PathAprovacao, run: runApprovals})
	register(command{name: "usuarios", summary: "listar | criar | editar | excluir | ativar contas", screen: policy.PathUsuarios, run: runUsers})
}

func runApprovals(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: uso repoctl aprovacoes listar|aprovar|rejeitar", errUsage)
	}
	sub, rest := args[0], args[1:]

	if _, err := a.approvals.Load(ctx); err != nil {
		return err
	}

	switch sub {
	case "listar":
		return a.printJSON(a.approvals.Pending())
	case "aprovar", "rejeitar":
		fs := a.flagSet("aprovacoes " + sub)
		comentario := fs.StringP("comentario", "c", "", "comentário da decisão")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := parseID(fs.Args())
		if err != nil {
			return err
		}
		item, err := a.approvals.Process(ctx, id, sub == "aprovar", *comentario)
		if err != nil {
			return err
		}
		a.notice("fluxo %d: %s; restam %d pendentes", item.IDFluxo, item.Estado, len(a.approvals.Pending()))
		return nil
	}
	return fmt.Errorf("%w: subcomando %q", errUsage, sub)
}

func runUsers(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: uso repoctl usuarios listar|criar|editar|excluir|ativar", errUsage)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "listar":
		users, err := a.users.List(ctx)
		if err != nil {
			return err
		}
		return a.printJSON(users)

	case "criar":
		fs := a.flagSet("usuarios criar")
		nome := fs.StringP("nome", "n", "", "nome completo")
		email := fs.StringP("email", "e", "", "e-mail")
		perfil := fs.String("perfil", string(model.RoleFuncionario), "ADMIN, GESTOR ou FUNCIONARIO")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		senha, err := a.readPassword("Senha do novo usuário: ")
		if err != nil {
			return err
		}
		user, err := a.users.Create(ctx, model.NewUser{Nome: *nome, Email: *email, Senha: senha, Perfil: model.Role(*perfil)})
		if err != nil {
			return err
		}
		return a.printJSON(user)

	case "editar":
		fs := a.flagSet("usuarios editar")
		nome := fs.StringP("nome", "n", "", "nome completo")
		email := fs.StringP("email", "e", "", "e-mail")
		perfil := fs.String("perfil", "", "ADMIN, GESTOR ou FUNCIONARIO")
		trocarSenha := fs.Bool("senha", false, "pede uma nova senha")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := parseID(fs.Args())
		if err != nil {
			return err
		}

		var patch model.UserPatch
		if fs.Changed("nome") {
			patch.Nome = nome
		}
		if fs.Changed("email") {
			patch.Email = email
		}
		if fs.Changed("perfil") {
			role := model.Role(*perfil)
			patch.Perfil = &role
		}
		if *trocarSenha {
			senha, err := a.readPassword("Nova senha: ")
			if err != nil {
				return err
			}
			patch.Senha = &senha
		}

		user, err := a.users.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		return a.printJSON(user)

	case "excluir":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		// carrega a lista para a confirmação mostrar nome e e-mail
		if _, err := a.users.List(ctx); err != nil {
			return err
		}
		if err := a.users.Delete(ctx, id); err != nil {
			return err
		}
		a.notice("usuário %d excluído", id)
		return nil

	case "ativar":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.users.Activate(ctx, id); err != nil {
			return err
		}
		a.notice("usuário %d ativado", id)
		return nil
	}
	return fmt.Errorf("%w: subcomando %q", errUsage, sub)
}
