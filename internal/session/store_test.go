package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/model"
)

type stubAuth struct {
	token    string
	user     model.User
	loginErr error
	meErr    error
	logins   int
	meToken  string
}

func (s *stubAuth) Login(ctx context.Context, email, senha string) (string, error) {
	s.logins++
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.token, nil
}

func (s *stubAuth) Me(ctx context.Context, token string) (model.User, error) {
	s.meToken = token
	if s.meErr != nil {
		return model.User{}, s.meErr
	}
	return s.user, nil
}

func newFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	return NewFileStorage(filepath.Join(t.TempDir(), "repoctl", "session.json"))
}

func mustSet(t *testing.T, st Storage, key, value string) {
	t.Helper()
	if err := st.Set(context.Background(), key, value); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func identityJSON(t *testing.T, email string, role model.Role) string {
	t.Helper()
	raw, err := json.Marshal(model.Identity{Email: email, Role: role})
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestLoginPersistsTokenAndVerifiedIdentity(t *testing.T) {
	ctx := context.Background()
	st := newFileStorage(t)
	auth := &stubAuth{token: "tok-1", user: model.User{Email: "maria@uema.br", Perfil: model.RoleGestor}}
	store := Open(ctx, st, auth, zerolog.Nop())

	sess, err := store.Login(ctx, "maria@uema.br", "segredo123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if auth.meToken != "tok-1" {
		t.Fatalf("profile must be fetched with the new token, got %q", auth.meToken)
	}
	if !sess.Authenticated() || sess.User.Role != model.RoleGestor {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !store.RoleIsPrivileged() {
		t.Fatal("GESTOR must be privileged")
	}

	reopened := Open(ctx, NewFileStorage(st.Path()), auth, zerolog.Nop())
	if !reopened.IsAuthenticated() {
		t.Fatal("session must survive a restart")
	}
	if got := reopened.Current().User.Email; got != "maria@uema.br" {
		t.Fatalf("restored email = %q", got)
	}
}

func TestRoleDoesNotComeFromEmail(t *testing.T) {
	ctx := context.Background()
	auth := &stubAuth{token: "tok", user: model.User{Email: "admin@uema.br", Perfil: model.RoleFuncionario}}
	store := Open(ctx, newFileStorage(t), auth, zerolog.Nop())

	if _, err := store.Login(ctx, "admin@uema.br", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.RoleIsPrivileged() {
		t.Fatal("an e-mail containing admin must not grant privileges")
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	auth := &stubAuth{token: "tok"}
	store := Open(ctx, newFileStorage(t), auth, zerolog.Nop())

	if _, err := store.Login(ctx, "", "x"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := store.Login(ctx, "a@b.c", ""); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if auth.logins != 0 {
		t.Fatalf("backend must not be called, got %d calls", auth.logins)
	}
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	ctx := context.Background()
	st := newFileStorage(t)

	rejected := &stubAuth{loginErr: &apperr.AuthError{Kind: apperr.InvalidCredentials}}
	store := Open(ctx, st, rejected, zerolog.Nop())
	if _, err := store.Login(ctx, "a@b.c", "x"); !apperr.IsAuth(err, apperr.InvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	profileFails := &stubAuth{token: "tok", meErr: &apperr.AuthError{Kind: apperr.Network}}
	store = Open(ctx, st, profileFails, zerolog.Nop())
	if _, err := store.Login(ctx, "a@b.c", "x"); !apperr.IsAuth(err, apperr.Network) {
		t.Fatalf("expected network error, got %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("failed login must not leave a half session")
	}
	if _, err := st.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token must not be persisted, got %v", err)
	}
}

func TestRestoreMatchesStoredToken(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		token string
		user  string
		want  bool
	}{
		{name: "vazio", want: false},
		{name: "token e usuário", token: "opaco", user: `{"email":"a@b.c","perfil":"ADMIN"}`, want: true},
		{name: "só token", token: "opaco", want: false},
		{name: "só usuário", user: `{"email":"a@b.c","perfil":"ADMIN"}`, want: false},
		{name: "usuário corrompido", token: "opaco", user: `{`, want: false},
		{name: "perfil desconhecido", token: "opaco", user: `{"email":"a@b.c","perfil":"ROOT"}`, want: false},
		{name: "jwt expirado", token: signedToken(t, time.Now().Add(-time.Hour)), user: `{"email":"a@b.c","perfil":"GESTOR"}`, want: false},
		{name: "jwt válido", token: signedToken(t, time.Now().Add(time.Hour)), user: `{"email":"a@b.c","perfil":"GESTOR"}`, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newFileStorage(t)
			if tc.token != "" {
				mustSet(t, st, KeyToken, tc.token)
			}
			if tc.user != "" {
				mustSet(t, st, KeyUser, tc.user)
			}

			store := Open(ctx, st, &stubAuth{}, zerolog.Nop())
			if got := store.IsAuthenticated(); got != tc.want {
				t.Fatalf("IsAuthenticated = %v, want %v", got, tc.want)
			}
			if !tc.want {
				_, tokenErr := st.Get(ctx, KeyToken)
				_, userErr := st.Get(ctx, KeyUser)
				if !errors.Is(tokenErr, ErrNotFound) || !errors.Is(userErr, ErrNotFound) {
					t.Fatalf("invalid session must be cleared, token=%v user=%v", tokenErr, userErr)
				}
			}
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newFileStorage(t)
	mustSet(t, st, KeyToken, "tok")
	mustSet(t, st, KeyUser, identityJSON(t, "a@b.c", model.RoleAdmin))
	store := Open(ctx, st, &stubAuth{}, zerolog.Nop())

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	first := store.Current()

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	second := store.Current()

	if first.Authenticated() || second.Authenticated() || first.Token != second.Token || first.User != second.User {
		t.Fatalf("logout twice must equal logout once: %+v vs %+v", first, second)
	}
	if _, err := st.Get(ctx, KeyUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user must be removed from storage, got %v", err)
	}
}

func TestCorruptSessionFileIsReplaced(t *testing.T) {
	ctx := context.Background()
	st := newFileStorage(t)
	if err := os.MkdirAll(filepath.Dir(st.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(st.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	auth := &stubAuth{token: "tok", user: model.User{Email: "a@b.c", Perfil: model.RoleFuncionario}}
	store := Open(ctx, st, auth, zerolog.Nop())
	if store.IsAuthenticated() {
		t.Fatal("corrupt file must restore as logged out")
	}
	if _, err := os.Stat(st.Path()); !os.IsNotExist(err) {
		t.Fatalf("restore must remove the corrupt file, stat err = %v", err)
	}

	if err := os.WriteFile(st.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Login(ctx, "a@b.c", "x"); err != nil {
		t.Fatalf("login over corrupt file: %v", err)
	}
	if got, err := st.Get(ctx, KeyToken); err != nil || got != "tok" {
		t.Fatalf("token after login = %q, %v", got, err)
	}

	if err := os.WriteFile(st.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout over corrupt file: %v", err)
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if _, err := st.Get(ctx, KeyToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token must be gone, got %v", err)
	}
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	value, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(value)
	return cmd
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func TestRedisStorageRoundTripsSession(t *testing.T) {
	ctx := context.Background()
	rdb := &stubRedis{}
	st := NewRedisStorage(rdb, "")
	auth := &stubAuth{token: "tok-redis", user: model.User{Email: "a@b.c", Perfil: model.RoleAdmin}}

	store := Open(ctx, st, auth, zerolog.Nop())
	if _, err := store.Login(ctx, "a@b.c", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rdb.store[defaultRedisPrefix+KeyToken] != "tok-redis" {
		t.Fatalf("token not stored under prefix: %v", rdb.store)
	}

	again := Open(ctx, st, auth, zerolog.Nop())
	if !again.RoleIsPrivileged() {
		t.Fatal("restored ADMIN session must be privileged")
	}

	if err := again.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(rdb.store) != 0 {
		t.Fatalf("logout must clear redis keys, left %v", rdb.store)
	}
}
