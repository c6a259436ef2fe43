package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/backend"
)

// fakeAPI scripts the auth endpoints: one known account, tokens handed out on
// login and honored on /auth/me.
func fakeAPI(t *testing.T) (*backend.Client, *Store, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		if err := jsonDecode(r, &creds); err != nil {
			w.WriteHeader(400)
			return
		}
		switch {
		case creds.Email == "a@b.com" && creds.Password == "secret1A":
			w.Write([]byte(`{"data":{"accessToken":"tok","user":{"id":"u1","firstName":"Ana","email":"a@b.com","role":"customer","isActive":true}}}`))
		case creds.Email == "gone@b.com":
			w.WriteHeader(403)
			w.Write([]byte(`{"message":"Your account is inactive"}`))
		default:
			w.WriteHeader(401)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
		}
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(401)
			w.Write([]byte(`{"message":"jwt malformed"}`))
			return
		}
		w.Write([]byte(`{"data":{"id":"u1","firstName":"Ana","email":"a@b.com","role":"customer","isActive":true}}`))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})
	srv := httptest.NewServer(mux)

	db, err := OpenTokenDB(":memory:")
	if err != nil {
		t.Fatalf("open token db: %v", err)
	}
	api := backend.New(srv.URL)
	st := NewStore(api, NewTokenRepo(db))
	return api, st, func() { srv.Close(); db.Close() }
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func TestLoginPersistsToken(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	u, err := st.Login(context.Background(), "sid1", backend.Credentials{Email: "a@b.com", Password: "secret1A"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "u1" || u.Role != "customer" {
		t.Errorf("user = %+v", u)
	}
	if st.Token("sid1") != "tok" {
		t.Errorf("token not persisted, got %q", st.Token("sid1"))
	}
}

func TestLoginBadCredentials(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	_, err := st.Login(context.Background(), "sid1", backend.Credentials{Email: "a@b.com", Password: "wrong"})
	if !errors.Is(err, ErrBadCredentials) {
		t.Errorf("err = %v, want ErrBadCredentials", err)
	}
	if st.Token("sid1") != "" {
		t.Error("token stored on failed login")
	}
}

func TestLoginInactiveAccountIsDistinct(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	_, err := st.Login(context.Background(), "sid1", backend.Credentials{Email: "gone@b.com", Password: "secret1A"})
	if !errors.Is(err, backend.ErrInactiveAccount) {
		t.Errorf("err = %v, want ErrInactiveAccount", err)
	}
	if errors.Is(err, ErrBadCredentials) {
		t.Error("inactive account must not read as bad credentials")
	}
}

func TestCurrentResolvesAuthenticated(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	if _, err := st.Login(context.Background(), "sid1", backend.Credentials{Email: "a@b.com", Password: "secret1A"}); err != nil {
		t.Fatal(err)
	}
	sess := st.Current(context.Background(), "sid1")
	if sess.Status != Authenticated {
		t.Fatalf("status = %v", sess.Status)
	}
	if sess.User == nil || sess.User.Email != "a@b.com" {
		t.Errorf("user = %+v", sess.User)
	}
}

func TestCurrentAnonymous(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()
	if sess := st.Current(context.Background(), "never-seen"); sess.Status != Unauthenticated {
		t.Errorf("status = %v, want Unauthenticated", sess.Status)
	}
}

// A rejected token is cleared so the next request is plainly anonymous.
func TestRejectedTokenIsCleared(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	if err := st.tokens.Save("sid1", "stale-token"); err != nil {
		t.Fatal(err)
	}
	sess := st.Current(context.Background(), "sid1")
	if sess.Status != Unauthenticated {
		t.Fatalf("status = %v, want Unauthenticated", sess.Status)
	}
	if st.Token("sid1") != "" {
		t.Error("rejected token still persisted")
	}
}

// A network failure is not proof the token is bad: keep it, report Errored.
func TestUnreachableBackendPreservesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	db, err := OpenTokenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	st := NewStore(backend.New(srv.URL), NewTokenRepo(db))

	if err := st.tokens.Save("sid1", "tok"); err != nil {
		t.Fatal(err)
	}
	sess := st.Current(context.Background(), "sid1")
	if sess.Status != Errored {
		t.Fatalf("status = %v, want Errored", sess.Status)
	}
	if st.Token("sid1") != "tok" {
		t.Error("token dropped on transient failure")
	}
}

func TestLogoutClearsTokenAndFiresHooks(t *testing.T) {
	_, st, done := fakeAPI(t)
	defer done()

	if _, err := st.Login(context.Background(), "sid1", backend.Credentials{Email: "a@b.com", Password: "secret1A"}); err != nil {
		t.Fatal(err)
	}
	var dropped []string
	st.OnEnd(func(sid string) { dropped = append(dropped, sid) })

	if err := st.Logout(context.Background(), "sid1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if st.Token("sid1") != "" {
		t.Error("token survived logout")
	}
	if len(dropped) != 1 || dropped[0] != "sid1" {
		t.Errorf("hooks fired with %v", dropped)
	}
}

func TestTokenExpiryCappedByJWTClaim(t *testing.T) {
	db, err := OpenTokenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewTokenRepo(db)

	// token whose exp claim is already in the past
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	s, err := expired.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Save("sid1", s); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Get("sid1"); got != "" {
		t.Errorf("expired token served: %q", got)
	}

	// opaque (non-JWT) tokens fall back to the default TTL
	if err := repo.Save("sid2", "opaque-token"); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Get("sid2"); got != "opaque-token" {
		t.Errorf("opaque token = %q", got)
	}
}
