package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type DashboardHandler struct {
	Sessions *session.Store
	API      *backend.Client
}

// Dashboard dispatches once on the user's role; each variant is its own
// template and data load. The role is read a single time here and never
// re-derived per widget.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	sess, _ := c.Locals("session").(session.Session)
	switch sess.User.Role {
	case backend.RoleAdmin:
		return h.admin(c)
	case backend.RoleVendor:
		return h.vendor(c)
	default:
		return h.customer(c)
	}
}

func (h *DashboardHandler) admin(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token := h.Sessions.Token(sid)

	stats, err := h.API.DashboardStats(c.Context(), token)
	if err != nil {
		return failBackend(c, h.Sessions, err, "dashboard.admin.stats")
	}
	top, err := h.API.TopProducts(c.Context(), token)
	if err != nil {
		applog.Error(c, "dashboard.admin.top_products", err, nil)
	}
	return render(c, "dashboard_admin", fiber.Map{"Stats": stats, "TopProducts": top, "Tab": tab(c)})
}

func (h *DashboardHandler) vendor(c *fiber.Ctx) error {
	sid := ensureSID(c)
	token := h.Sessions.Token(sid)
	sess, _ := c.Locals("session").(session.Session)

	stats, err := h.API.DashboardStats(c.Context(), token)
	if err != nil {
		return failBackend(c, h.Sessions, err, "dashboard.vendor.stats")
	}
	page, err := h.API.VendorProducts(c.Context(), token, sess.User.ID, backend.ListParams{Limit: 50})
	if err != nil {
		applog.Error(c, "dashboard.vendor.products", err, nil)
	}
	orders, err := h.API.VendorOrders(c.Context(), token)
	if err != nil {
		applog.Error(c, "dashboard.vendor.orders", err, nil)
	}
	return render(c, "dashboard_vendor", fiber.Map{
		"Stats":    stats,
		"Products": page.Products,
		"Orders":   orders,
		"Tab":      tab(c),
	})
}

func (h *DashboardHandler) customer(c *fiber.Ctx) error {
	sid := ensureSID(c)
	orders, err := h.API.Orders(c.Context(), h.Sessions.Token(sid))
	if err != nil {
		applog.Error(c, "dashboard.customer.orders", err, nil)
	}
	recent := orders
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return render(c, "dashboard_customer", fiber.Map{"Orders": orders, "Recent": recent, "Tab": tab(c)})
}

func tab(c *fiber.Ctx) string {
	t := c.Query("tab")
	if t == "" {
		return "overview"
	}
	return t
}

// ---- vendor product management ----

func (h *DashboardHandler) ProductForm(c *fiber.Ctx) error {
	return render(c, "vendor_product_form", fiber.Map{})
}

func (h *DashboardHandler) EditProductForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	p, err := h.API.Product(c.Context(), id)
	if err != nil {
		return failBackend(c, h.Sessions, err, "vendor.product.load")
	}
	return render(c, "vendor_product_form", fiber.Map{"P": p})
}

func (h *DashboardHandler) CreateProduct(c *fiber.Ctx) error {
	sid := ensureSID(c)
	in, errs := productInputFromForm(c)
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("vendor_product_form", fiber.Map{"Errs": errs, "Form": in})
	}
	p, err := h.API.CreateProduct(c.Context(), h.Sessions.Token(sid), in)
	if err != nil {
		return failBackend(c, h.Sessions, err, "vendor.product.create")
	}
	applog.Audit(c, "vendor.product.create", map[string]any{"product": p.ID})
	return c.Redirect("/dashboard?tab=products")
}

func (h *DashboardHandler) UpdateProduct(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	in, errs := productInputFromForm(c)
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("vendor_product_form", fiber.Map{"Errs": errs, "Form": in})
	}
	if _, err := h.API.UpdateProduct(c.Context(), h.Sessions.Token(sid), id, in); err != nil {
		return failBackend(c, h.Sessions, err, "vendor.product.update")
	}
	applog.Audit(c, "vendor.product.update", map[string]any{"product": id})
	return c.Redirect("/dashboard?tab=products")
}

func (h *DashboardHandler) DeleteProduct(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	if err := h.API.DeleteProduct(c.Context(), h.Sessions.Token(sid), id); err != nil {
		return failBackend(c, h.Sessions, err, "vendor.product.delete")
	}
	applog.Audit(c, "vendor.product.delete", map[string]any{"product": id})
	return c.Redirect("/dashboard?tab=products")
}

func productInputFromForm(c *fiber.Ctx) (backend.ProductInput, []string) {
	var errs []string
	in := backend.ProductInput{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Brand:       strings.TrimSpace(c.FormValue("brand")),
		Category:    strings.TrimSpace(c.FormValue("category")),
		Status:      c.FormValue("status"),
	}
	if in.Name == "" {
		errs = append(errs, "Name is required")
	}
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < 0 {
		errs = append(errs, "Price must be a valid number")
	}
	in.Price = price
	stock, err := strconv.Atoi(c.FormValue("stock"))
	if err != nil || stock < 0 {
		errs = append(errs, "Stock must be a valid number")
	}
	in.Stock = stock
	if in.Status != "active" && in.Status != "inactive" && in.Status != "draft" {
		in.Status = "draft"
	}
	if tags := strings.TrimSpace(c.FormValue("tags")); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				in.Tags = append(in.Tags, t)
			}
		}
	}
	return in, errs
}
