package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/client"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/policy"
	"github.com/uema/repositorio/internal/search"
)

func init() {
	register(command{name: "docs", summary: "listar | criar | editar | excluir documentos", run: runDocs})
	register(command{name: "programas", summary: "lista os programas", screen: policy.PathUpload, run: runPrograms})
	register(command{name: "busca", summary: "consulta com filtros ou em linguagem natural", screen: policy.PathConsulta, run: runSearch})
}

func runDocs(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: uso repoctl docs listar|criar|editar|excluir", errUsage)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "listar":
		if err := a.enter(policy.PathDashboard); err != nil {
			return err
		}
		docs, err := a.documents.List(ctx)
		if err != nil {
			return err
		}
		return a.printJSON(docs)
	case "criar":
		if err := a.enter(policy.PathUpload); err != nil {
			return err
		}
		return createDocument(ctx, a, rest)
	case "editar":
		if err := a.enter(policy.PathDashboard); err != nil {
			return err
		}
		return updateDocument(ctx, a, rest)
	case "excluir":
		if err := a.enter(policy.PathDashboard); err != nil {
			return err
		}
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.documents.Delete(ctx, id); err != nil {
			return err
		}
		a.notice("documento %d excluído", id)
		return nil
	}
	return fmt.Errorf("%w: subcomando %q", errUsage, sub)
}

type documentFlags struct {
	titulo    *string
	descricao *string
	tipo      *string
	data      *string
	programa  *int64
	arquivo   *string
}

func defineDocumentFlags(fs *pflag.FlagSet) documentFlags {
	return documentFlags{
		titulo:    fs.StringP("titulo", "t", "", "título"),
		descricao: fs.StringP("descricao", "d", "", "descrição"),
		tipo:      fs.String("tipo", "", "EDITAIS, RESULTADOS, FORMULARIOS, OUTROS, DOCUMENTACOES ou RESOLUCOES"),
		data:      fs.String("data", "", "data de publicação AAAA-MM-DD (padrão: hoje)"),
		programa:  fs.Int64P("programa", "p", 0, "id do programa"),
		arquivo:   fs.StringP("arquivo", "a", "", "caminho do arquivo"),
	}
}

func (f documentFlags) fields() model.DocumentFields {
	return model.DocumentFields{
		Titulo:         *f.titulo,
		Descricao:      *f.descricao,
		Tipo:           model.DocumentType(*f.tipo),
		DataPublicacao: *f.data,
		ProgramaID:     *f.programa,
	}
}

// openUpload abre o arquivo informado; caminho vazio devolve nil.
func openUpload(path string) (*client.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperr.Invalid("arquivo", err.Error())
	}
	return &client.Upload{Name: path, Reader: f}, func() { f.Close() }, nil
}

func createDocument(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("docs criar")
	flags := defineDocumentFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	upload, closeFile, err := openUpload(*flags.arquivo)
	if err != nil {
		return err
	}
	defer closeFile()

	doc, err := a.documents.Create(ctx, flags.fields(), upload)
	if err != nil {
		return err
	}
	if doc.Status == model.EstadoPendente {
		a.notice("documento enviado para aprovação")
	}
	return a.printJSON(doc)
}

// updateDocument parte do documento atual; só as flags informadas mudam.
func updateDocument(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("docs editar")
	flags := defineDocumentFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs.Args())
	if err != nil {
		return err
	}

	docs, err := a.documents.List(ctx)
	if err != nil {
		return err
	}
	var current *model.Document
	for i := range docs {
		if docs[i].ID == id {
			current = &docs[i]
			break
		}
	}
	if current == nil {
		return &apperr.NotFoundError{Message: fmt.Sprintf("documento %d não encontrado", id)}
	}

	fields := model.DocumentFields{
		Titulo:         current.Titulo,
		Descricao:      current.Descricao,
		Tipo:           current.Tipo,
		DataPublicacao: current.DataPublicacao,
		ProgramaID:     current.ProgramaID,
	}
	changed := flags.fields()
	if fs.Changed("titulo") {
		fields.Titulo = changed.Titulo
	}
	if fs.Changed("descricao") {
		fields.Descricao = changed.Descricao
	}
	if fs.Changed("tipo") {
		fields.Tipo = changed.Tipo
	}
	if fs.Changed("data") {
		fields.DataPublicacao = changed.DataPublicacao
	}
	if fs.Changed("programa") {
		fields.ProgramaID = changed.ProgramaID
	}

	upload, closeFile, err := openUpload(*flags.arquivo)
	if err != nil {
		return err
	}
	defer closeFile()

	doc, err := a.documents.Update(ctx, id, fields, upload)
	if err != nil {
		return err
	}
	return a.printJSON(doc)
}

func runPrograms(ctx context.Context, a *app, args []string) error {
	programs, err := a.documents.Programs(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(programs)
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("busca")
	query := fs.StringP("query", "q", "", "consulta em linguagem natural")
	texto := fs.StringP("texto", "t", "", "trecho do título ou da descrição")
	tipo := fs.String("tipo", "", "categoria exata")
	programa := fs.StringP("programa", "p", "", "nome ou sigla do programa")
	de := fs.String("de", "", "data inicial AAAA-MM-DD (inclusiva)")
	ate := fs.String("ate", "", "data final AAAA-MM-DD (inclusiva)")
	categorias := fs.Bool("categorias", false, "mostra só as categorias presentes no resultado")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nomePrograma := strings.TrimSpace(*programa)
	if nomePrograma != "" {
		programs, err := a.documents.Programs(ctx)
		if err != nil {
			return err
		}
		nomePrograma = programName(programs, nomePrograma)
	}

	filters := search.Filters{
		Query:    *query,
		Texto:    *texto,
		Tipo:     model.DocumentType(*tipo),
		Programa: nomePrograma,
		De:       *de,
		Ate:      *ate,
	}
	docs, err := a.search.Search(ctx, filters)
	if err != nil {
		return err
	}
	if *categorias {
		return a.printJSON(a.search.Categories())
	}
	return a.printJSON(docs)
}

// programName troca uma sigla (PPGEC) pelo nome do programa, que é o que os documentos trazem.
// Valor que não é sigla conhecida segue como nome exato.
func programName(programs []model.Program, value string) string {
	for _, p := range programs {
		if p.Nome == value {
			return value
		}
	}
	for _, p := range programs {
		if strings.EqualFold(p.Sigla, value) {
			return p.Nome
		}
	}
	return value
}
