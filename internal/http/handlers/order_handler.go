package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Sessions *session.Store
	API      *backend.Client
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	sid := ensureSID(c)
	orders, err := h.API.Orders(c.Context(), h.Sessions.Token(sid))
	if err != nil {
		return failBackend(c, h.Sessions, err, "orders.list")
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	// Ownership is the backend's call: it scopes /orders/:id to the token's
	// user and answers 404 for anyone else's order.
	o, err := h.API.Order(c.Context(), h.Sessions.Token(sid), id)
	if err != nil {
		return failBackend(c, h.Sessions, err, "orders.detail")
	}
	return render(c, "order", fiber.Map{"Order": o})
}
