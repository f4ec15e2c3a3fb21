package model

// ApprovalStatus é o estado de um fluxo de aprovação.
type ApprovalStatus string

const (
	EstadoPendente  ApprovalStatus = "PENDENTE"
	EstadoAprovado  ApprovalStatus = "APROVADO"
	EstadoRejeitado ApprovalStatus = "REJEITADO"
)

// Terminal informa se o estado não admite nova decisão.
func (s ApprovalStatus) Terminal() bool {
	return s == EstadoAprovado || s == EstadoRejeitado
}

// ApprovalItem é uma decisão pendente sobre um documento.
type ApprovalItem struct {
	IDFluxo         int64          `json:"idFluxo"`
	IDDocumento     int64          `json:"idDocumento"`
	Estado          ApprovalStatus `json:"estado"`
	TituloDocumento string         `json:"tituloDocumento"`
	NomeAutor       string         `json:"nomeAutor"`
	NomePrograma    string         `json:"nomePrograma"`
	DataSolicitacao string         `json:"dataSolicitacao"`
}
