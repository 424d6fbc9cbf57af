package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tidegrove/storefront/internal/auth"
	catalogdomain "github.com/tidegrove/storefront/internal/catalog/domain"
	cataloghandler "github.com/tidegrove/storefront/internal/catalog/handler/http"
	carthandler "github.com/tidegrove/storefront/internal/cart/handler/http"
	orderhandler "github.com/tidegrove/storefront/internal/order/handler/http"
	userhandler "github.com/tidegrove/storefront/internal/user/handler/http"
	wishlisthandler "github.com/tidegrove/storefront/internal/wishlist/handler/http"
	"github.com/tidegrove/storefront/pkg/health"
	"github.com/tidegrove/storefront/pkg/middleware"
)

// routerDeps bundles everything the router needs.
type routerDeps struct {
	catalog  *cataloghandler.CatalogHandler
	admin    *cataloghandler.AdminHandler
	reviews  *cataloghandler.ReviewHandler
	cart     *carthandler.CartHandler
	wishlist *wishlisthandler.WishlistHandler
	orders   *orderhandler.OrderHandler
	adminOrd *orderhandler.AdminOrderHandler
	users    *userhandler.UserHandler

	jwt            *auth.JWTManager
	healthHandler  *health.Handler
	logger         *slog.Logger
	corsOrigins    []string
	adminRateRPS   int
	adminRateBurst int
}

// newRouter assembles the full API surface.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogging(d.logger))
	r.Use(middleware.RequestLogger(d.logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: d.corsOrigins}))

	r.Get("/health/live", d.healthHandler.Live)
	r.Get("/health/ready", d.healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	authn := middleware.Auth(d.jwt.Verify)

	// Public catalog surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", d.catalog.ListProducts)
		r.Get("/{idOrSlug}", d.catalog.GetProduct)

		r.Route("/{productID}/reviews", func(r chi.Router) {
			r.Get("/", d.reviews.List)
			r.Get("/summary", d.reviews.Summary)
			r.With(authn).Post("/", d.reviews.Create)
		})
	})
	r.Get("/api/v1/categories", d.catalog.ListTerms(catalogdomain.KindCategory))
	r.Get("/api/v1/subcategories", d.catalog.ListTerms(catalogdomain.KindSubcategory))
	r.Get("/api/v1/brands", d.catalog.ListTerms(catalogdomain.KindBrand))
	r.Get("/api/v1/product-types", d.catalog.ListTerms(catalogdomain.KindProductType))

	// Auth.
	r.Post("/api/v1/auth/register", d.users.Register)
	r.Post("/api/v1/auth/login", d.users.Login)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/api/v1/users", func(r chi.Router) {
			r.Get("/me", d.users.Me)
			r.Put("/me", d.users.UpdateMe)
		})

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", d.cart.Get)
			r.Delete("/", d.cart.Clear)
			r.Post("/items", d.cart.AddItem)
			r.Put("/items/{productID}", d.cart.UpdateItem)
			r.Delete("/items/{productID}", d.cart.RemoveItem)
		})

		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", d.wishlist.List)
			r.Delete("/", d.wishlist.Clear)
			r.Post("/items", d.wishlist.AddItem)
			r.Get("/items/{productID}", d.wishlist.Contains)
			r.Delete("/items/{productID}", d.wishlist.RemoveItem)
		})

		r.Post("/api/v1/checkout", d.orders.Checkout)
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", d.orders.List)
			r.Get("/{id}", d.orders.Get)
			r.Post("/{id}/cancel", d.orders.Cancel)
		})

		r.Delete("/api/v1/reviews/{id}", d.reviews.Delete)
	})

	// Admin surface.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(authn)
		r.Use(middleware.RequireRole("admin"))
		r.Use(middleware.RateLimit(d.adminRateRPS, d.adminRateBurst, d.logger))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", d.admin.CreateProduct)
			r.Put("/{id}", d.admin.UpdateProduct)
			r.Delete("/{id}", d.admin.DeleteProduct)
		})

		terms := map[string]catalogdomain.TermKind{
			"categories":    catalogdomain.KindCategory,
			"subcategories": catalogdomain.KindSubcategory,
			"brands":        catalogdomain.KindBrand,
			"product-types": catalogdomain.KindProductType,
		}
		for path, kind := range terms {
			r.Post("/"+path, d.admin.CreateTerm(kind))
			r.Delete("/"+path+"/{identifier}", d.admin.DeleteTerm(kind))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", d.adminOrd.List)
			r.Get("/{id}", d.adminOrd.Get)
			r.Put("/{id}/status", d.adminOrd.UpdateStatus)
		})
	})

	return r
}
