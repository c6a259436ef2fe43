package handlers

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Sessions *session.Store
	Carts    *cart.Store
}

const inactiveHelp = "Your account has been deactivated. Contact support to reactivate it, or sign in with a different account."

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	data := fiber.Map{"Next": c.Query("next")}
	switch {
	case c.Query("inactive") == "1":
		data["InactiveErr"] = inactiveHelp
	case c.Query("expired") == "1":
		data["Err"] = "Session expired. Please login again."
	case c.Query("registered") == "1":
		data["Msg"] = "Account created. Please sign in."
	}
	return render(c, "login", data)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	next := safeNext(c.FormValue("next"))

	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_email_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "Next": next})
	}
	password := c.FormValue("password")
	if password == "" {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "Next": next})
	}

	u, err := h.Sessions.Login(c.Context(), sid, backend.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, backend.ErrInactiveAccount) {
			applog.Security(c, "auth.login.inactive", map[string]any{"email": email})
			return c.Status(fiber.StatusForbidden).Render("login", fiber.Map{"InactiveErr": inactiveHelp, "Next": next})
		}
		if errors.Is(err, session.ErrBadCredentials) {
			applog.Security(c, "auth.login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "Next": next})
		}
		return failBackend(c, h.Sessions, err, "auth.login")
	}

	// Entering an authenticated session: pull the authoritative cart now so
	// the badge is right on the very next render. Best effort only.
	if tok := h.Sessions.Token(sid); tok != "" {
		if _, lerr := h.Carts.Load(c.Context(), sid, tok); lerr != nil {
			applog.Error(c, "cart.load_on_login", lerr, nil)
		}
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	if next != "" {
		return c.Redirect(next)
	}
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	form := backend.Registration{
		FirstName: strings.TrimSpace(c.FormValue("firstName")),
		LastName:  strings.TrimSpace(c.FormValue("lastName")),
		Email:     strings.TrimSpace(c.FormValue("email")),
		Password:  c.FormValue("password"),
		Phone:     strings.TrimSpace(c.FormValue("phone")),
		Role:      c.FormValue("role"),
	}

	var errs []string
	if _, ok := validate.Name(form.FirstName); !ok {
		errs = append(errs, "First name is required")
	}
	if _, ok := validate.Name(form.LastName); !ok {
		errs = append(errs, "Last name is required")
	}
	if _, ok := validate.Email(form.Email); !ok {
		errs = append(errs, "Please enter a valid email address")
	}
	errs = append(errs, validate.Password(form.Password)...)
	if form.Phone != "" {
		if _, ok := validate.Phone(form.Phone); !ok {
			errs = append(errs, "Please enter a valid phone number")
		}
	}
	// Only shopper-facing roles are self-service; admins are provisioned
	// upstream.
	if form.Role != backend.RoleVendor {
		form.Role = backend.RoleCustomer
	}
	if len(errs) > 0 {
		applog.Security(c, "auth.register.validation", map[string]any{"count": len(errs)})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Errs": errs, "Form": form})
	}

	if err := h.Sessions.Register(c.Context(), form); err != nil {
		var be *backend.Error
		if errors.As(err, &be) && be.Status == fiber.StatusBadRequest {
			return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Errs": []string{be.Message}, "Form": form})
		}
		return failBackend(c, h.Sessions, err, "auth.register")
	}

	applog.Audit(c, "auth.register", map[string]any{"email": form.Email, "role": form.Role})
	// Registration never authenticates; the account may still need email
	// activation before the first login.
	return c.Redirect("/login?registered=1")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Sessions.Logout(c.Context(), sid); err != nil {
		// Server-side invalidation is best effort; the local token is gone
		// regardless.
		applog.Error(c, "auth.logout.server", err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

func (h *AuthHandler) ForgotForm(c *fiber.Ctx) error {
	return render(c, "forgot_password", fiber.Map{})
}

func (h *AuthHandler) Forgot(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("forgot_password", fiber.Map{"Err": "Please enter a valid email address"})
	}
	if err := h.Sessions.ForgotPassword(c.Context(), email); err != nil {
		return failBackend(c, h.Sessions, err, "auth.forgot")
	}
	return render(c, "forgot_password", fiber.Map{"Msg": "If that address exists, a reset link is on its way."})
}

func (h *AuthHandler) ResetForm(c *fiber.Ctx) error {
	return render(c, "reset_password", fiber.Map{"Token": c.Params("token")})
}

func (h *AuthHandler) Reset(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token := c.Params("token")
	password := c.FormValue("password")
	if errs := validate.Password(password); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("reset_password", fiber.Map{"Token": token, "Errs": errs})
	}
	if err := h.Sessions.ResetPassword(c.Context(), sid, token, password); err != nil {
		if errors.Is(err, backend.ErrNotFound) || errors.Is(err, backend.ErrUnauthorized) {
			return c.Status(fiber.StatusBadRequest).Render("reset_password", fiber.Map{"Token": token, "Errs": []string{"This reset link is invalid or has expired."}})
		}
		return failBackend(c, h.Sessions, err, "auth.reset")
	}
	applog.Audit(c, "auth.reset_password", nil)
	return c.Redirect("/")
}

// safeNext only honors relative paths, so the login redirect can't be used
// to bounce users to another origin.
func safeNext(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return u.String()
}
