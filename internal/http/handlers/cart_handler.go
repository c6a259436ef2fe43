package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type CartHandler struct {
	Carts    *cart.Store
	Sessions *session.Store
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := ensureSID(c)
	st, err := h.Carts.Load(c.Context(), sid, h.Sessions.Token(sid))
	if err != nil {
		return failBackend(c, h.Sessions, err, "cart.load")
	}
	return render(c, "cart", fiber.Map{
		"Cart":    st,
		"Summary": cart.Summarize(st.Total),
		"Msg":     c.Query("msg"),
		"Err":     c.Query("err"),
	})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty, ok := validate.Qty(c.FormValue("quantity"))
	if !ok {
		qty = 1
	}
	if err := h.Carts.Add(c.Context(), sid, h.Sessions.Token(sid), productID, qty); err != nil {
		return h.mutationError(c, err, "cart.add", productID)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/cart?msg=Product+added+to+cart")
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	// The quantity floor is enforced here: qty < 1 never makes a network
	// call, the form just re-renders with the old value.
	qty, ok := validate.Qty(c.FormValue("quantity"))
	if !ok {
		return c.Redirect("/cart?err=Quantity+must+be+at+least+1")
	}
	if err := h.Carts.UpdateItem(c.Context(), sid, h.Sessions.Token(sid), productID, qty); err != nil {
		return h.mutationError(c, err, "cart.update", productID)
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Carts.Remove(c.Context(), sid, h.Sessions.Token(sid), productID); err != nil {
		return h.mutationError(c, err, "cart.remove", productID)
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": productID})
	return c.Redirect("/cart")
}

// Clear requires the confirm field, posted by the confirmation dialog in the
// cart view.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if c.FormValue("confirm") != "1" {
		return c.Redirect("/cart?err=Please+confirm+clearing+your+cart")
	}
	if err := h.Carts.Clear(c.Context(), sid, h.Sessions.Token(sid)); err != nil {
		return h.mutationError(c, err, "cart.clear", "")
	}
	applog.Audit(c, "cart.clear", nil)
	return c.Redirect("/cart?msg=Cart+cleared")
}

// mutationError surfaces every failed cart mutation to the user. Local
// validation failures become inline messages; the inactive-account 403 and
// 401 short-circuit through failBackend into the session-recovery flow.
func (h *CartHandler) mutationError(c *fiber.Ctx, err error, action, productID string) error {
	switch {
	case errors.Is(err, cart.ErrQuantityFloor):
		return c.Redirect("/cart?err=Quantity+must+be+at+least+1")
	case errors.Is(err, cart.ErrInsufficientStock):
		return c.Redirect("/cart?err=Not+enough+stock+for+this+product")
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrInactiveAccount):
		return failBackend(c, h.Sessions, err, action)
	default:
		applog.Error(c, action+".fail", err, map[string]any{"product": productID})
		return c.Redirect("/cart?err=Could+not+update+your+cart.+Please+try+again.")
	}
}
