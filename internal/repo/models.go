package repo

import "time"

// Usuario representa uma conta do repositório.
type Usuario struct {
	ID        int64
	Nome      string
	Email     string
	SenhaHash string
	Perfil    string
	Ativo     bool
	CriadoEm  time.Time
}

// CreateUsuarioParams reúne os campos de inserção de conta.
type CreateUsuarioParams struct {
	Nome      string
	Email     string
	SenhaHash string
	Perfil    string
	Ativo     bool
}

// UpdateUsuarioParams altera só os campos não nulos.
type UpdateUsuarioParams struct {
	ID        int64
	Nome      *string
	Email     *string
	SenhaHash *string
	Perfil    *string
}

// Programa é um programa de pós-graduação.
type Programa struct {
	ID    int64
	Nome  string
	Sigla string
}

// Documento é a linha de documentos com autor, programa e o estado do último fluxo.
type Documento struct {
	ID             int64
	Titulo         string
	Descricao      string
	Tipo           string
	DataPublicacao time.Time
	ArquivoChave   string
	ArquivoNome    string
	ArquivoTipo    string
	AutorID        int64
	NomeAutor      string
	ProgramaID     *int64
	NomePrograma   *string
	Estado         string
	CriadoEm       time.Time
}

// ArquivoParams descreve o arquivo já gravado no storage.
type ArquivoParams struct {
	Chave string
	Nome  string
	Tipo  string
}

// CreateDocumentoParams cria documento e seu primeiro fluxo de aprovação.
type CreateDocumentoParams struct {
	Titulo         string
	Descricao      string
	Tipo           string
	DataPublicacao time.Time
	Arquivo        ArquivoParams
	AutorID        int64
	ProgramaID     *int64
	EstadoInicial  string
	Comentario     string
	AprovadorID    *int64
}

// UpdateDocumentoParams altera metadados; Arquivo nil mantém o atual.
type UpdateDocumentoParams struct {
	ID             int64
	Titulo         string
	Descricao      string
	Tipo           string
	DataPublicacao time.Time
	ProgramaID     *int64
	Arquivo        *ArquivoParams
}

// ListDocumentosParams controla a visibilidade da listagem.
// TodosEstados libera tudo; senão só aprovados e os do próprio ViewerID.
type ListDocumentosParams struct {
	TodosEstados bool
	ViewerID     int64
}

// FluxoPendente é a linha da fila de aprovação.
type FluxoPendente struct {
	ID              int64
	DocumentoID     int64
	Estado          string
	TituloDocumento string
	NomeAutor       string
	NomePrograma    *string
	DataSolicitacao time.Time
}

// DecideFluxoParams registra a decisão sobre um fluxo pendente.
type DecideFluxoParams struct {
	ID          int64
	Estado      string
	Comentario  string
	AprovadorID int64
}
