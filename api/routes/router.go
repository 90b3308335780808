package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patelpulse/pulse-backend/api/controllers"
	webhookcontrollers "github.com/patelpulse/pulse-backend/api/controllers/webhooks"
	"github.com/patelpulse/pulse-backend/api/middleware"
	"github.com/patelpulse/pulse-backend/internal/auth"
	"github.com/patelpulse/pulse-backend/internal/authz"
	"github.com/patelpulse/pulse-backend/internal/blog"
	checkoutsvc "github.com/patelpulse/pulse-backend/internal/checkout"
	"github.com/patelpulse/pulse-backend/internal/content"
	"github.com/patelpulse/pulse-backend/internal/products"
	"github.com/patelpulse/pulse-backend/internal/reviews"
	"github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface is wired to. Nil services
// still route; their handlers answer 500.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Health  map[string]controllers.Pinger
	Metrics http.Handler

	RateLimiter   redis.RateLimiter
	ResponseStore redis.ResponseStore
	Authorizer    authz.Authorizer

	Auth     auth.Service
	Products products.Service
	Reviews  reviews.Service
	Blog     blog.Service
	Content  content.Service
	Checkout checkoutsvc.Service
	Sales    sales.AdminService

	Webhook       webhookcontrollers.PaymentWebhookService
	WebhookGuard  webhookcontrollers.Guard
	WebhookSecret webhookcontrollers.SecretSource
}

func NewRouter(d Dependencies) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Health, logg))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Post("/api/payment/webhook", webhookcontrollers.RazorpayWebhook(d.Webhook, d.WebhookSecret, d.WebhookGuard, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(d.Products, logg))
		r.Get("/products/{slug}", controllers.GetProduct(d.Products, logg))
		r.Get("/products/{slug}/reviews", controllers.ListProductReviews(d.Reviews, logg))
		r.Post("/products/{slug}/reviews", controllers.SubmitReview(d.Reviews, logg))

		r.Get("/blog", controllers.ListPosts(d.Blog, logg))
		r.Get("/blog/{slug}", controllers.GetPost(d.Blog, logg))

		r.Get("/services", controllers.ListServices(d.Content, logg))
		r.Get("/services/{slug}", controllers.GetService(d.Content, logg))
		r.Get("/projects", controllers.ListProjects(d.Content, logg))
		r.Get("/projects/{slug}", controllers.GetProject(d.Content, logg))
		r.Get("/team", controllers.ListTeam(d.Content, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.Idempotency(d.ResponseStore, logg))
			r.Post("/", controllers.StartCheckout(d.Checkout, logg))
			r.Post("/verify", controllers.VerifyCheckout(d.Checkout, logg))
			r.Get("/{orderId}", controllers.CheckoutStatus(d.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
		r.With(middleware.AuthRateLimit(loginPolicy, d.RateLimiter, logg)).
			Post("/auth/login", controllers.AdminLogin(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			mountAdmin(r, d)
		})
	})

	return r
}

func mountAdmin(r chi.Router, d Dependencies) {
	logg := d.Logger
	can := func(action authz.Action) func(http.Handler) http.Handler {
		return middleware.RequireCapability(d.Authorizer, action, logg)
	}

	r.Route("/products", func(r chi.Router) {
		r.With(can(authz.ActionManageProducts)).Get("/", controllers.AdminListProducts(d.Products, logg))
		r.With(can(authz.ActionManageProducts)).Post("/", controllers.AdminCreateProduct(d.Products, logg))
		r.With(can(authz.ActionManageProducts)).Get("/{productId}", controllers.AdminGetProduct(d.Products, logg))
		r.With(can(authz.ActionManageProducts)).Patch("/{productId}", controllers.AdminUpdateProduct(d.Products, logg))
		r.With(can(authz.ActionManageProducts)).Delete("/{productId}", controllers.AdminDeleteProduct(d.Products, logg))
		r.With(can(authz.ActionRecomputeRate)).Post("/{productId}/rating/recompute", controllers.AdminRecomputeRating(d.Products, logg))
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Use(can(authz.ActionModerateReview))
		r.Get("/", controllers.AdminListReviews(d.Reviews, logg))
		r.Post("/{reviewId}/approve", controllers.AdminApproveReview(d.Reviews, logg))
		r.Post("/{reviewId}/reject", controllers.AdminRejectReview(d.Reviews, logg))
		r.Delete("/{reviewId}", controllers.AdminDeleteReview(d.Reviews, logg))
	})

	r.Route("/blog", func(r chi.Router) {
		r.Use(can(authz.ActionManageBlog))
		r.Get("/", controllers.AdminListPosts(d.Blog, logg))
		r.Post("/", controllers.AdminCreatePost(d.Blog, logg))
		r.Get("/{postId}", controllers.AdminGetPost(d.Blog, logg))
		r.Patch("/{postId}", controllers.AdminUpdatePost(d.Blog, logg))
		r.Delete("/{postId}", controllers.AdminDeletePost(d.Blog, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(can(authz.ActionManageContent))
		r.Get("/services", controllers.AdminListServices(d.Content, logg))
		r.Post("/services", controllers.AdminCreateService(d.Content, logg))
		r.Put("/services/{id}", controllers.AdminUpdateService(d.Content, logg))
		r.Delete("/services/{id}", controllers.AdminDeleteService(d.Content, logg))

		r.Get("/projects", controllers.AdminListProjects(d.Content, logg))
		r.Post("/projects", controllers.AdminCreateProject(d.Content, logg))
		r.Put("/projects/{id}", controllers.AdminUpdateProject(d.Content, logg))
		r.Delete("/projects/{id}", controllers.AdminDeleteProject(d.Content, logg))

		r.Get("/team", controllers.AdminListTeam(d.Content, logg))
		r.Post("/team", controllers.AdminCreateTeamMember(d.Content, logg))
		r.Put("/team/{id}", controllers.AdminUpdateTeamMember(d.Content, logg))
		r.Delete("/team/{id}", controllers.AdminDeleteTeamMember(d.Content, logg))
	})

	r.Route("/sales", func(r chi.Router) {
		r.With(can(authz.ActionViewSales)).Get("/", controllers.AdminListSales(d.Sales, logg))
		r.With(can(authz.ActionViewSales)).Get("/{saleId}", controllers.AdminGetSale(d.Sales, logg))
		r.With(can(authz.ActionRefundSale)).Post("/{saleId}/refund", controllers.AdminRefundSale(d.Sales, logg))
	})
}
