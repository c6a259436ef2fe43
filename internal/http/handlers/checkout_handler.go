package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type CheckoutHandler struct {
	Carts    *cart.Store
	Sessions *session.Store
	API      *backend.Client
}

func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	st, err := h.Carts.Load(c.Context(), sid, h.Sessions.Token(sid))
	if err != nil {
		return failBackend(c, h.Sessions, err, "checkout.load")
	}
	if len(st.Items) == 0 {
		return c.Redirect("/cart?err=Your+cart+is+empty")
	}
	return render(c, "checkout", fiber.Map{"Cart": st, "Summary": cart.Summarize(st.Total)})
}

// Place initiates checkout: create a payment intent for the summary total,
// then create the order referencing it. Payment capture itself is the
// provider's business; the storefront only forwards the handshake.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token := h.Sessions.Token(sid)

	addr := backend.Address{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Street:  strings.TrimSpace(c.FormValue("street")),
		City:    strings.TrimSpace(c.FormValue("city")),
		Zip:     strings.TrimSpace(c.FormValue("zip")),
		Country: strings.TrimSpace(c.FormValue("country")),
	}
	if _, ok := validate.Name(addr.Name); !ok || !validate.Required(addr.Street) || !validate.Required(addr.City) || !validate.Required(addr.Zip) {
		applog.Security(c, "validation.fail", map[string]any{"field": "shipping_address"})
		st := h.Carts.Get(sid)
		return c.Status(fiber.StatusBadRequest).Render("checkout", fiber.Map{
			"Cart": st, "Summary": cart.Summarize(st.Total),
			"Err": "Please fill in the full shipping address.",
		})
	}

	st, err := h.Carts.Load(c.Context(), sid, token)
	if err != nil {
		return failBackend(c, h.Sessions, err, "checkout.reload")
	}
	if len(st.Items) == 0 {
		return c.Redirect("/cart?err=Your+cart+is+empty")
	}
	summary := cart.Summarize(st.Total)

	intent, err := h.API.CreatePaymentIntent(c.Context(), token, summary.Total, "usd")
	if err != nil {
		return failBackend(c, h.Sessions, err, "checkout.intent")
	}

	order, err := h.API.CreateOrder(c.Context(), token, backend.CheckoutInput{
		ShippingAddress: addr,
		PaymentIntentID: intent.ID,
	})
	if err != nil {
		return failBackend(c, h.Sessions, err, "checkout.order")
	}

	if err := h.API.ConfirmPayment(c.Context(), token, backend.PaymentConfirmation{PaymentIntentID: intent.ID, OrderID: order.ID}); err != nil {
		// The order exists; confirmation is retried by the backend. Surface
		// it but land the user on their order.
		applog.Error(c, "checkout.confirm", err, map[string]any{"order": order.ID})
	}

	// The backend empties the cart on order creation; mirror that locally.
	h.Carts.Drop(sid)

	applog.Audit(c, "checkout.place", map[string]any{"order": order.ID, "total": summary.Total})
	return c.Redirect("/orders/" + order.ID)
}
