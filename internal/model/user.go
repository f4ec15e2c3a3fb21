package model

// User é uma conta do repositório como exposta pela API.
type User struct {
	ID     int64  `json:"id"`
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Perfil Role   `json:"perfil"`
	Ativo  bool   `json:"ativo"`
}

// NewUser reúne os dados de criação de uma conta.
type NewUser struct {
	Nome   string `json:"nome"`
	Email  string `json:"email"`
	Senha  string `json:"senha"`
	Perfil Role   `json:"perfil"`
}

// UserPatch altera parcialmente uma conta; campos nil permanecem como estão.
type UserPatch struct {
	Nome   *string `json:"nome,omitempty"`
	Email  *string `json:"email,omitempty"`
	Senha  *string `json:"senha,omitempty"`
	Perfil *Role   `json:"perfil,omitempty"`
}
