package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type WishlistHandler struct {
	Sessions *session.Store
	API      *backend.Client
}

func (h *WishlistHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	products, err := h.API.Wishlist(c.Context(), h.Sessions.Token(sid))
	if err != nil {
		return failBackend(c, h.Sessions, err, "wishlist.list")
	}
	return render(c, "wishlist", fiber.Map{"Products": products, "Msg": c.Query("msg")})
}

func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.API.AddToWishlist(c.Context(), h.Sessions.Token(sid), productID); err != nil {
		return failBackend(c, h.Sessions, err, "wishlist.add")
	}
	applog.Audit(c, "wishlist.add", map[string]any{"product": productID})
	return c.Redirect("/wishlist?msg=Added+to+wishlist")
}

func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	err := h.API.RemoveFromWishlist(c.Context(), h.Sessions.Token(sid), productID)
	// Removing something already gone is a no-op, not a failure.
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return failBackend(c, h.Sessions, err, "wishlist.remove")
	}
	applog.Audit(c, "wishlist.remove", map[string]any{"product": productID})
	return c.Redirect("/wishlist")
}
