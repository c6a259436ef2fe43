package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/backend"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/session"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := session.OpenTokenDB(cfg.SessionDSN)
	if err != nil {
		log.Fatal(err)
	}
	tokens := session.NewTokenRepo(db)

	api := backend.New(cfg.APIBaseURL)
	sessions := session.NewStore(api, tokens)
	redis := cache.New(cfg.RedisAddr, cfg.RedisPass)

	// Lapsed sessions pile up otherwise; sweep them hourly.
	go func() {
		for range time.Tick(time.Hour) {
			if err := tokens.PurgeExpired(); err != nil {
				log.Printf("[warn] session purge: %v", err)
			}
		}
	}()

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.AttachSession(sessions))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(cfg, api, sessions, redis)

	// Public pages
	app.Get("/", deps.HomeHandler.Home)
	app.Get("/products", deps.ProductHandler.List)
	app.Get("/product", func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	})
	app.Get("/product/:id", deps.ProductHandler.Detail)
	app.Get("/category/:slug", deps.ProductHandler.Category)

	// Auth routes (login throttled)
	authH := deps.AuthHandler
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Post("/logout", authH.Logout)
	app.Get("/forgot-password", authH.ForgotForm)
	app.Post("/forgot-password", authH.Forgot)
	app.Get("/reset-password/:token", authH.ResetForm)
	app.Post("/reset-password/:token", authH.Reset)

	// Cart & checkout (authenticated)
	cartGroup := app.Group("/cart", handlers.RequireUser())
	cartGroup.Get("/", deps.CartHandler.View)
	cartGroup.Post("/add", deps.CartHandler.Add)
	cartGroup.Post("/update", deps.CartHandler.Update)
	cartGroup.Post("/remove", deps.CartHandler.Remove)
	cartGroup.Post("/clear", deps.CartHandler.Clear)

	app.Get("/checkout", handlers.RequireUser(), deps.CheckoutHandler.Checkout)
	app.Post("/checkout", handlers.RequireUser(), deps.CheckoutHandler.Place)

	// Orders
	app.Get("/orders", handlers.RequireUser(), deps.OrderHandler.History)
	app.Get("/orders/:id", handlers.RequireUser(), deps.OrderHandler.Detail)

	// Reviews
	app.Post("/product/:id/reviews", handlers.RequireUser(), deps.ProductHandler.Review)

	// Profile & wishlist
	app.Get("/profile", handlers.RequireUser(), deps.ProfileHandler.Profile)
	app.Post("/profile", handlers.RequireUser(), deps.ProfileHandler.Update)
	app.Post("/profile/password", handlers.RequireUser(), deps.ProfileHandler.Password)
	app.Get("/wishlist", handlers.RequireUser(), deps.WishlistHandler.View)
	app.Post("/wishlist", handlers.RequireUser(), deps.WishlistHandler.Add)
	app.Post("/wishlist/delete", handlers.RequireUser(), deps.WishlistHandler.Remove)

	// Dashboard (any role gets its own variant; vendor tools need the role)
	app.Get("/dashboard", handlers.RequireUser(), deps.DashboardHandler.Dashboard)
	vendor := app.Group("/dashboard/products", handlers.RequireRoles(backend.RoleVendor, backend.RoleAdmin))
	vendor.Get("/new", deps.DashboardHandler.ProductForm)
	vendor.Post("/", deps.DashboardHandler.CreateProduct)
	vendor.Get("/:id/edit", deps.DashboardHandler.EditProductForm)
	vendor.Post("/:id", deps.DashboardHandler.UpdateProduct)
	vendor.Post("/:id/delete", deps.DashboardHandler.DeleteProduct)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
