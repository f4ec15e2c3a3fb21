package policy

import (
	"testing"

	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/session"
)

func sessionFor(role model.Role) session.Session {
	return session.Session{Token: "tok", User: &model.Identity{Email: "a@uema.br", Role: role}}
}

func TestProtectedRoutesRedirectAnonymousToLogin(t *testing.T) {
	for _, route := range Routes {
		if !route.RequiresAuth {
			continue
		}
		got := Decide(route, session.Session{})
		if got.Allow || got.Redirect != PathLogin {
			t.Fatalf("%s: expected redirect to login, got %+v", route.Path, got)
		}

		// token sem identidade não conta como sessão
		got = Decide(route, session.Session{Token: "tok"})
		if got.Redirect != PathLogin {
			t.Fatalf("%s: half session must redirect to login, got %+v", route.Path, got)
		}
	}
}

func TestProtectedRoutesAllowPrivilegedSession(t *testing.T) {
	for _, role := range []model.Role{model.RoleAdmin, model.RoleGestor} {
		for _, route := range Routes {
			if !route.RequiresAuth {
				continue
			}
			if got := Decide(route, sessionFor(role)); !got.Allow {
				t.Fatalf("%s as %s: expected allow, got %+v", route.Path, role, got)
			}
		}
	}
}

func TestRestrictedRoutesBounceFuncionario(t *testing.T) {
	s := sessionFor(model.RoleFuncionario)
	cases := map[string]Decision{
		PathDashboard: {Allow: true},
		PathUpload:    {Allow: true},
		PathConsulta:  {Allow: true},
		PathAprovacao: {Redirect: PathDashboard},
		PathUsuarios:  {Redirect: PathDashboard},
	}
	for path, want := range cases {
		if got := Decide(Lookup(path), s); got != want {
			t.Fatalf("%s: got %+v, want %+v", path, got, want)
		}
	}
}

func TestPublicEntryRedirectsAuthenticated(t *testing.T) {
	for _, path := range []string{PathLogin, PathRegister} {
		if got := Decide(Lookup(path), sessionFor(model.RoleFuncionario)); got.Redirect != PathDashboard {
			t.Fatalf("%s: expected dashboard, got %+v", path, got)
		}
		if got := Decide(Lookup(path), session.Session{}); !got.Allow {
			t.Fatalf("%s: anonymous must be allowed, got %+v", path, got)
		}
	}
}

func TestNavigateFollowsRedirects(t *testing.T) {
	cases := []struct {
		path    string
		session session.Session
		want    string
	}{
		{"/", session.Session{}, PathLogin},
		{"/", sessionFor(model.RoleGestor), PathDashboard},
		{"/nao-existe", session.Session{}, PathLogin},
		{"/nao-existe", sessionFor(model.RoleAdmin), PathDashboard},
		{"usuarios/", sessionFor(model.RoleAdmin), PathUsuarios},
		{"/usuarios", sessionFor(model.RoleFuncionario), PathDashboard},
		{"/consulta", session.Session{}, PathLogin},
	}
	for _, tc := range cases {
		got, _ := Navigate(tc.path, tc.session)
		if got != tc.want {
			t.Fatalf("Navigate(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestVisibleMenuHidesRestrictedItems(t *testing.T) {
	funcionario := &model.Identity{Email: "f@uema.br", Role: model.RoleFuncionario}
	if got := VisibleMenu(DefaultMenu, funcionario); len(got) != 3 {
		t.Fatalf("FUNCIONARIO should see 3 items, got %v", got)
	}
	if got := VisibleMenu(DefaultMenu, nil); len(got) != 3 {
		t.Fatalf("anonymous should see 3 items, got %v", got)
	}

	gestor := &model.Identity{Email: "g@uema.br", Role: model.RoleGestor}
	if got := VisibleMenu(DefaultMenu, gestor); len(got) != len(DefaultMenu) {
		t.Fatalf("GESTOR should see every item, got %v", got)
	}
}
