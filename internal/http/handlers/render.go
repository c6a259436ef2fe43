package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	applog "storefront/internal/log"
	"storefront/internal/session"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if sess, ok := c.Locals("session").(session.Session); ok {
		data["Session"] = sess
		if sess.User != nil {
			data["User"] = sess.User
		}
	}
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else {
		data["CSRFToken"] = c.Cookies("csrf_")
	}
	return c.Render(tmpl, data)
}

// failBackend converts a backend error into the global UX: 401 invalidates
// the session and bounces to login (unless we are already there), the
// inactive-account 403 forces logout into the dedicated recovery screen,
// and the rest render scoped notices. Every handler that talks to the
// backend funnels errors through here.
func failBackend(c *fiber.Ctx, sessions *session.Store, err error, action string) error {
	sid := c.Cookies("sid")
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		applog.Security(c, action+".unauthorized", nil)
		if sid != "" {
			sessions.Invalidate(sid)
		}
		if c.Path() == "/login" {
			return render(c, "login", fiber.Map{"Err": "Session expired. Please login again."})
		}
		return c.Redirect("/login?expired=1")
	case errors.Is(err, backend.ErrInactiveAccount):
		applog.Security(c, action+".inactive_account", nil)
		if sid != "" {
			sessions.Invalidate(sid)
		}
		return c.Redirect("/login?inactive=1")
	case errors.Is(err, backend.ErrForbidden):
		applog.Security(c, action+".forbidden", nil)
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Access denied. Please check your permissions."})
	case errors.Is(err, backend.ErrNotFound):
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Resource not found."})
	case errors.Is(err, backend.ErrUnavailable):
		applog.Error(c, action+".unavailable", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{"Message": "We are having trouble reaching the store. Please try again."})
	default:
		applog.Error(c, action+".error", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Server error. Please try again later."})
	}
}
