package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/backend"
	"storefront/internal/catalog"
	applog "storefront/internal/log"
	"storefront/internal/session"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog  *catalog.Service
	Sessions *session.Store
	API      *backend.Client
}

// List renders /products with the filter sidebar. Invalid filter values are
// dropped rather than erroring: a mangled query string should still show
// products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := filtersFromQuery(c)
	page, err := h.Catalog.List(c.Context(), f)
	if err != nil {
		applog.Error(c, "products.list", err, nil)
		return render(c, "products", fiber.Map{"Products": []backend.Product{}, "Filters": f, "Err": "Could not load products. Please try again."})
	}
	cats, _ := h.Catalog.Categories(c.Context())
	return render(c, "products", fiber.Map{
		"Products":   page.Products,
		"Total":      page.Total,
		"Filters":    f,
		"Categories": cats,
	})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "This item is no longer available"})
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		return failBackend(c, h.Sessions, err, "products.detail")
	}
	return render(c, "product", fiber.Map{"P": p})
}

func (h *ProductHandler) Category(c *fiber.Ctx) error {
	slug, ok := validate.ID(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Category not found"})
	}
	f := filtersFromQuery(c)
	page, err := h.Catalog.CategoryProducts(c.Context(), slug, f)
	if err != nil {
		return failBackend(c, h.Sessions, err, "products.category")
	}
	return render(c, "category", fiber.Map{"Slug": slug, "Products": page.Products, "Filters": f})
}

// Review posts a product review; requires an authenticated session.
func (h *ProductHandler) Review(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid product")
	}
	rating, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil || rating < 1 || rating > 5 {
		return c.Status(fiber.StatusBadRequest).SendString("rating must be 1-5")
	}
	in := backend.ReviewInput{Rating: rating, Comment: c.FormValue("comment")}
	if err := h.API.AddReview(c.Context(), h.Sessions.Token(sid), id, in); err != nil {
		return failBackend(c, h.Sessions, err, "products.review")
	}
	applog.Audit(c, "products.review", map[string]any{"product": id, "rating": rating})
	return c.Redirect("/product/" + id)
}

func filtersFromQuery(c *fiber.Ctx) catalog.Filters {
	var f catalog.Filters
	if q, ok := validate.Q(c.Query("q")); ok {
		f.Query = q
	}
	if cat, ok := validate.ID(c.Query("category")); ok {
		f.Category = cat
	}
	if v, ok := validate.Price(c.Query("minPrice")); ok {
		f.MinPrice = v
	}
	if v, ok := validate.Price(c.Query("maxPrice")); ok {
		f.MaxPrice = v
	}
	if r, ok := validate.Rating(c.Query("minRating")); ok {
		f.MinRating = r
	}
	if b, ok := validate.Q(c.Query("brand")); ok {
		f.Brand = b
	}
	f.InStockOnly = c.Query("inStock") == "1" || c.Query("inStock") == "true"
	if s, ok := validate.Sort(c.Query("sort")); ok {
		f.Sort = s
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 1 {
		f.Page = page
	}
	return f
}
