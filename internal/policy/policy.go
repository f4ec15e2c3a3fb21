// Package policy decide, a cada navegação, se a rota pode ser aberta com a sessão atual.
package policy

import (
	"strings"

	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/session"
)

const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathUpload    = "/upload"
	PathConsulta  = "/consulta"
	PathAprovacao = "/aprovacao"
	PathUsuarios  = "/usuarios"
)

// Route descreve os requisitos de acesso de uma tela.
type Route struct {
	Path         string
	RequiresAuth bool
	// PublicEntry marca login e cadastro: quem já está logado vai para o painel.
	PublicEntry bool
	Restricted  bool
	// Redirect fixo, usado pela raiz e pela rota curinga.
	Redirect string
}

// Decision é o resultado de Decide. Redirect vazio significa acesso liberado.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(path string) Decision { return Decision{Redirect: path} }

// Routes é a tabela de telas do cliente.
var Routes = []Route{
	{Path: PathRoot, Redirect: PathLogin},
	{Path: PathLogin, PublicEntry: true},
	{Path: PathRegister, PublicEntry: true},
	{Path: PathDashboard, RequiresAuth: true},
	{Path: PathUpload, RequiresAuth: true},
	{Path: PathConsulta, RequiresAuth: true},
	{Path: PathAprovacao, RequiresAuth: true, Restricted: true},
	{Path: PathUsuarios, RequiresAuth: true, Restricted: true},
}

var fallback = Route{Path: "*", Redirect: PathLogin}

// Lookup encontra a rota pelo caminho. Caminhos desconhecidos caem na rota curinga,
// que manda para o login.
func Lookup(path string) Route {
	path = normalize(path)
	for _, r := range Routes {
		if r.Path == path {
			return r
		}
	}
	return fallback
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// Decide não guarda estado: deve ser chamada em toda navegação com a sessão do momento.
func Decide(route Route, s session.Session) Decision {
	authenticated := s.Authenticated()

	switch {
	case route.Redirect != "":
		return redirect(route.Redirect)
	case route.RequiresAuth && !authenticated:
		return redirect(PathLogin)
	case route.PublicEntry && authenticated:
		return redirect(PathDashboard)
	case route.Restricted && !s.Privileged():
		return redirect(PathDashboard)
	}
	return allow()
}

// Navigate segue os redirecionamentos a partir de path até uma rota liberada.
// Devolve o caminho final e se houve desvio.
func Navigate(path string, s session.Session) (string, bool) {
	current := normalize(path)
	seen := map[string]struct{}{}
	for {
		decision := Decide(Lookup(current), s)
		if decision.Allow {
			return current, current != normalize(path)
		}
		if _, loop := seen[current]; loop {
			return current, true
		}
		seen[current] = struct{}{}
		current = decision.Redirect
	}
}

// MenuItem é uma entrada da barra lateral.
type MenuItem struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	Restricted bool   `json:"restrito,omitempty"`
}

// DefaultMenu é o menu completo, antes do filtro por perfil.
var DefaultMenu = []MenuItem{
	{Path: PathDashboard, Label: "Dashboard"},
	{Path: PathUpload, Label: "Enviar Documentos"},
	{Path: PathConsulta, Label: "Consulta"},
	{Path: PathAprovacao, Label: "Aprovação", Restricted: true},
	{Path: PathUsuarios, Label: "Usuários", Restricted: true},
}

// VisibleMenu mantém itens restritos só para ADMIN e GESTOR.
func VisibleMenu(items []MenuItem, identity *model.Identity) []MenuItem {
	privileged := identity != nil && identity.Privileged()
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.Restricted && !privileged {
			continue
		}
		out = append(out, item)
	}
	return out
}
