package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type ProfileHandler struct {
	Sessions *session.Store
	API      *backend.Client
}

func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	return render(c, "profile", fiber.Map{"Msg": c.Query("msg")})
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	upd := backend.ProfileUpdate{
		FirstName: strings.TrimSpace(c.FormValue("firstName")),
		LastName:  strings.TrimSpace(c.FormValue("lastName")),
		Phone:     strings.TrimSpace(c.FormValue("phone")),
	}
	var errs []string
	if _, ok := validate.Name(upd.FirstName); !ok {
		errs = append(errs, "First name is required")
	}
	if _, ok := validate.Name(upd.LastName); !ok {
		errs = append(errs, "Last name is required")
	}
	if upd.Phone != "" {
		if _, ok := validate.Phone(upd.Phone); !ok {
			errs = append(errs, "Phone number looks invalid")
		}
	}
	if len(errs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "profile"})
		c.Status(fiber.StatusBadRequest)
		return render(c, "profile", fiber.Map{"Errs": errs})
	}
	if _, err := h.Sessions.UpdateProfile(c.Context(), sid, upd); err != nil {
		return failBackend(c, h.Sessions, err, "profile.update")
	}
	applog.Audit(c, "profile.update", nil)
	return c.Redirect("/profile?msg=Profile+updated")
}

// Password changes the account password through the backend; the current
// password is re-checked server-side, never here.
func (h *ProfileHandler) Password(c *fiber.Ctx) error {
	sid := ensureSID(c)
	current := c.FormValue("currentPassword")
	next := c.FormValue("newPassword")

	var errs []string
	if current == "" {
		errs = append(errs, "Current password is required")
	}
	errs = append(errs, validate.Password(next)...)
	if next != c.FormValue("confirmPassword") {
		errs = append(errs, "Passwords do not match")
	}
	if len(errs) > 0 {
		c.Status(fiber.StatusBadRequest)
		return render(c, "profile", fiber.Map{"PwErrs": errs})
	}

	err := h.API.UpdatePassword(c.Context(), h.Sessions.Token(sid), backend.PasswordUpdate{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) && be.Status == fiber.StatusBadRequest {
			c.Status(fiber.StatusBadRequest)
			return render(c, "profile", fiber.Map{"PwErrs": []string{be.Message}})
		}
		return failBackend(c, h.Sessions, err, "profile.password")
	}
	applog.Security(c, "profile.password.change", nil)
	return c.Redirect("/profile?msg=Password+changed")
}
