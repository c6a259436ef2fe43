package handlers

import (
	"net/url"
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "storefront/internal/log"
	"storefront/internal/session"
)

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // set true behind HTTPS
		})
	}
	return sid
}

// loginRedirect sends the visitor to login, remembering where they were
// headed so a successful login can return them there.
func loginRedirect(c *fiber.Ctx) error {
	next := c.OriginalURL()
	if next == "" || next == "/login" {
		return c.Redirect("/login")
	}
	return c.Redirect("/login?next=" + url.QueryEscape(next))
}

// AttachSession resolves the auth session once per request and stores it in
// Locals for handlers and templates. Anonymous requests pass through with
// an unauthenticated session.
func AttachSession(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			c.Locals("session", session.Session{Status: session.Unauthenticated})
			return c.Next()
		}
		c.Locals("session", sessions.Current(c.Context(), sid))
		return c.Next()
	}
}

// RequireUser gates a route on an authenticated session. The inactive state
// gets its own recovery path rather than a generic denial.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := c.Locals("session").(session.Session)
		switch sess.Status {
		case session.Authenticated:
			return c.Next()
		case session.Inactive:
			return c.Redirect("/login?inactive=1")
		default:
			return loginRedirect(c)
		}
	}
}

// RequireRoles additionally gates on the user's role. Authenticated users
// with the wrong role are sent home, not to an error page.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, _ := c.Locals("session").(session.Session)
		if sess.Status == session.Inactive {
			return c.Redirect("/login?inactive=1")
		}
		if !sess.IsAuthenticated() {
			return loginRedirect(c)
		}
		if len(roles) > 0 && !slices.Contains(roles, sess.User.Role) {
			applog.Security(c, "access.denied.role", map[string]any{"role": sess.User.Role})
			return c.Redirect("/")
		}
		return c.Next()
	}
}
