package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/catalog"
	applog "storefront/internal/log"
)

type HomeHandler struct {
	Catalog *catalog.Service
}

// Home renders the landing page. Every section is a read: failures degrade
// to empty sections instead of an error page.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	featured, err := h.Catalog.Featured(c.Context())
	if err != nil {
		applog.Error(c, "home.featured", err, nil)
	}
	trending, err := h.Catalog.Trending(c.Context())
	if err != nil {
		applog.Error(c, "home.trending", err, nil)
	}
	cats, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "home.categories", err, nil)
	}
	return render(c, "home", fiber.Map{
		"Featured":   featured,
		"Trending":   trending,
		"Categories": cats,
	})
}
