package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/session"
)

// fakeMarketplace scripts the remote REST API for end-to-end handler tests:
// three accounts (customer, vendor, deactivated), a small catalog and an
// empty per-token cart.
func fakeMarketplace(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	userFor := func(token string) (string, bool) {
		switch token {
		case "Bearer tok-customer":
			return `{"id":"u1","firstName":"Ana","lastName":"Diaz","email":"ana@shop.test","role":"customer","isActive":true}`, true
		case "Bearer tok-vendor":
			return `{"id":"u2","firstName":"Ben","lastName":"Okafor","email":"ben@shop.test","role":"vendor","isActive":true}`, true
		default:
			return "", false
		}
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		switch {
		case creds.Email == "ana@shop.test" && creds.Password == "secret1A":
			w.Write([]byte(`{"data":{"accessToken":"tok-customer","user":{"id":"u1","firstName":"Ana","email":"ana@shop.test","role":"customer","isActive":true}}}`))
		case creds.Email == "ben@shop.test" && creds.Password == "secret1A":
			w.Write([]byte(`{"data":{"accessToken":"tok-vendor","user":{"id":"u2","firstName":"Ben","email":"ben@shop.test","role":"vendor","isActive":true}}}`))
		case creds.Email == "old@shop.test":
			w.WriteHeader(403)
			w.Write([]byte(`{"message":"Your account is inactive"}`))
		default:
			w.WriteHeader(401)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
		}
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if u, ok := userFor(r.Header.Get("Authorization")); ok {
			w.Write([]byte(`{"data":` + u + `}`))
			return
		}
		w.WriteHeader(401)
		w.Write([]byte(`{"message":"jwt malformed"}`))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})

	mux.HandleFunc("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFor(r.Header.Get("Authorization")); !ok {
			w.WriteHeader(401)
			w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}
		w.Write([]byte(`{"data":{"items":[]}}`))
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"products":[{"id":"p1","name":"Keyboard","price":49.5,"stock":3}],"total":1}}`))
	})
	mux.HandleFunc("GET /products/featured", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"p1","name":"Keyboard","price":49.5,"stock":3}]}`))
	})
	mux.HandleFunc("GET /products/trending", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc("GET /products/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"p1","name":"Keyboard","price":49.5,"stock":3}}`))
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"c1","name":"Peripherals","slug":"peripherals"}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestApp wires the real handler stack against the fake marketplace, the
// same way main does, with templates from the repo tree.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	api := backend.New(fakeMarketplace(t).URL)

	db, err := session.OpenTokenDB(":memory:")
	if err != nil {
		t.Fatalf("open token db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sessions := session.NewStore(api, session.NewTokenRepo(db))

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(handlers.AttachSession(sessions))
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	deps := handlers.NewDeps(config.Config{}, api, sessions, nil)

	app.Get("/", deps.HomeHandler.Home)
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 10, Expiration: time.Minute}), deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	app.Get("/cart", handlers.RequireUser(), deps.CartHandler.View)
	app.Get("/orders", handlers.RequireUser(), deps.OrderHandler.History)
	app.Get("/profile", handlers.RequireUser(), deps.ProfileHandler.Profile)
	app.Get("/dashboard", handlers.RequireUser(), deps.DashboardHandler.Dashboard)
	app.Get("/dashboard/products/new", handlers.RequireRoles(backend.RoleVendor, backend.RoleAdmin), deps.DashboardHandler.ProductForm)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// login posts credentials and returns the sid and csrf cookies for follow-up
// requests.
func login(t *testing.T, app *fiber.App, email, password string) (sid, csrfTok string) {
	t.Helper()
	respForm, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	csrfTok = cookieValue(respForm, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf cookie missing")
	}

	form := strings.NewReader("csrf=" + csrfTok + "&email=" + email + "&password=" + password)
	req := httptest.NewRequest("POST", "/login", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login status = %d, want 302", resp.StatusCode)
	}
	sid = cookieValue(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie missing after login")
	}
	return sid, csrfTok
}
