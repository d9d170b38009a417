package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopora-app/shopora-backend/api/controllers"
	"github.com/shopora-app/shopora-backend/api/middleware"
	"github.com/shopora-app/shopora-backend/internal/authgate"
	"github.com/shopora-app/shopora-backend/internal/cart"
	"github.com/shopora-app/shopora-backend/internal/catalog"
	checkoutsvc "github.com/shopora-app/shopora-backend/internal/checkout"
	"github.com/shopora-app/shopora-backend/internal/identity"
	"github.com/shopora-app/shopora-backend/internal/notifications"
	searchsvc "github.com/shopora-app/shopora-backend/internal/search"
	"github.com/shopora-app/shopora-backend/internal/shops"
	"github.com/shopora-app/shopora-backend/internal/wishlist"
	"github.com/shopora-app/shopora-backend/pkg/auth/session"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/db"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/metrics"
	"github.com/shopora-app/shopora-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. The struct keeps the
// constructor readable as the service list grows.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Sessions     session.AccessSessionChecker
	Gate         *authgate.Gate
	HTTPMetrics  *metrics.HTTPMetrics
	Identity     identity.Service
	Catalog      catalog.Service
	Cart         cart.Service
	Wishlist     wishlist.Service
	Shops        shops.Service
	Checkout     checkoutsvc.Service
	Notification notifications.Service
	SearchPrefs  *searchsvc.Preferences
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Identity, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Identity, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Identity, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Identity, logg))
			r.Get("/me", controllers.AuthMe(deps.Identity, logg))
		})
	})

	// Storefront browsing works without an account. A session, when present,
	// personalizes follow state and search history.
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))

			r.Get("/products", controllers.ProductList(deps.Catalog, logg))
			r.Get("/products/{productId}", controllers.ProductDetail(deps.Catalog, logg))
			r.Get("/categories", controllers.CategoryList(deps.Catalog, logg))

			r.Get("/search/products", controllers.SearchProducts(deps.Catalog, deps.SearchPrefs, logg))

			r.Get("/shops", controllers.ShopList(deps.Shops, logg))
			r.Get("/shops/{slug}", controllers.ShopBySlug(deps.Shops, logg))
			r.Get("/shops/{slug}/products", controllers.ShopProducts(deps.Shops, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Get("/summary", controllers.CartSummary(deps.Cart, logg))
				r.Get("/contains/{productId}", controllers.CartContains(deps.Cart, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
				r.Post("/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
				r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
				r.Get("/{productId}", controllers.WishlistContains(deps.Wishlist, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutStart(deps.Checkout, logg))
				r.Get("/", controllers.CheckoutList(deps.Checkout, logg))
				r.Get("/{sessionId}", controllers.CheckoutDetail(deps.Checkout, logg))
				r.Post("/{sessionId}/complete", controllers.CheckoutComplete(deps.Checkout, logg))
				r.Post("/{sessionId}/cancel", controllers.CheckoutCancel(deps.Checkout, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notification, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notification, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notification, logg))
			})

			r.Route("/search", func(r chi.Router) {
				r.Get("/view-mode", controllers.ViewModeGet(deps.SearchPrefs, logg))
				r.Put("/view-mode", controllers.ViewModeSet(deps.SearchPrefs, logg))
				r.Get("/history", controllers.SearchHistory(deps.SearchPrefs, logg))
				r.Delete("/history/term", controllers.SearchHistoryForget(deps.SearchPrefs, logg))
				r.Delete("/history", controllers.SearchHistoryClear(deps.SearchPrefs, logg))
			})

			r.Post("/shops/{slug}/follow", controllers.ShopFollow(deps.Shops, logg))
			r.Delete("/shops/{slug}/follow", controllers.ShopUnfollow(deps.Shops, logg))
			r.Get("/shops/followed", controllers.ShopFollowed(deps.Shops, logg))
		})
	})

	// The admin panel is a gated page surface. Failing the gate redirects to
	// the login or landing page rather than returning a JSON error.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Gate(deps.Gate, enums.RoleShopAdmin, logg))
		r.Route("/v1/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Catalog, logg))
		})
	})

	return r
}
