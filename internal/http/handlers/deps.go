package handlers

import (
	"storefront/internal/backend"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/session"
)

type Deps struct {
	AuthHandler      *AuthHandler
	HomeHandler      *HomeHandler
	ProductHandler   *ProductHandler
	CartHandler      *CartHandler
	CheckoutHandler  *CheckoutHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
	ProfileHandler   *ProfileHandler
	WishlistHandler  *WishlistHandler
}

func NewDeps(cfg config.Config, api *backend.Client, sessions *session.Store, redis *cache.Client) *Deps {
	carts := cart.NewStore(api)
	// CartState must not outlive the session it belongs to.
	sessions.OnEnd(carts.Drop)

	catalogSvc := catalog.New(api, redis)

	return &Deps{
		AuthHandler:      &AuthHandler{Sessions: sessions, Carts: carts},
		HomeHandler:      &HomeHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Sessions: sessions, API: api},
		CartHandler:      &CartHandler{Carts: carts, Sessions: sessions},
		CheckoutHandler:  &CheckoutHandler{Carts: carts, Sessions: sessions, API: api},
		OrderHandler:     &OrderHandler{Sessions: sessions, API: api},
		DashboardHandler: &DashboardHandler{Sessions: sessions, API: api},
		ProfileHandler:   &ProfileHandler{Sessions: sessions, API: api},
		WishlistHandler:  &WishlistHandler{Sessions: sessions, API: api},
	}
}
