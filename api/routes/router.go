package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucaramirezo/products-ga/api/controllers"
	"github.com/lucaramirezo/products-ga/api/middleware"
	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/internal/categoryrules"
	"github.com/lucaramirezo/products-ga/internal/importer"
	"github.com/lucaramirezo/products-ga/internal/params"
	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/internal/products"
	"github.com/lucaramirezo/products-ga/internal/purchases"
	"github.com/lucaramirezo/products-ga/internal/quotes"
	"github.com/lucaramirezo/products-ga/internal/suppliers"
	"github.com/lucaramirezo/products-ga/internal/tiers"
	"github.com/lucaramirezo/products-ga/pkg/config"
	"github.com/lucaramirezo/products-ga/pkg/db"
	"github.com/lucaramirezo/products-ga/pkg/logger"
	"github.com/lucaramirezo/products-ga/pkg/metrics"
)

// Services collects everything the admin API serves.
type Services struct {
	Tiers         tiers.Service
	CategoryRules categoryrules.Service
	Params        params.Service
	Suppliers     suppliers.Service
	Products      products.Service
	PriceBook     pricebook.Service
	Purchases     purchases.Service
	Quotes        quotes.Service
	Importer      importer.Service
	Audit         audit.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tiers", func(r chi.Router) {
			r.Get("/", controllers.ListTiers(svcs.Tiers, logg))
			r.Get("/{id}", controllers.GetTier(svcs.Tiers, logg))
			r.Patch("/{id}", controllers.UpdateTier(svcs.Tiers, logg))
		})

		r.Route("/category-rules", func(r chi.Router) {
			r.Get("/", controllers.ListCategoryRules(svcs.CategoryRules, logg))
			r.Get("/{category}", controllers.GetCategoryRule(svcs.CategoryRules, logg))
			r.Put("/{category}", controllers.UpsertCategoryRule(svcs.CategoryRules, logg))
			r.Delete("/{category}", controllers.DeleteCategoryRule(svcs.CategoryRules, logg))
		})

		r.Route("/params", func(r chi.Router) {
			r.Get("/", controllers.GetPriceParams(svcs.Params, logg))
			r.Patch("/", controllers.UpdatePriceParams(svcs.Params, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(svcs.Suppliers, logg))
			r.Post("/", controllers.CreateSupplier(svcs.Suppliers, logg))
			r.Get("/{id}", controllers.GetSupplier(svcs.Suppliers, logg))
			r.Patch("/{id}", controllers.UpdateSupplier(svcs.Suppliers, logg))
			r.Delete("/{id}", controllers.DeleteSupplier(svcs.Suppliers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))

			r.Route("/{sku}", func(r chi.Router) {
				r.Get("/", controllers.GetProduct(svcs.Products, logg))
				r.Patch("/", controllers.UpdateProduct(svcs.Products, logg))
				r.Delete("/", controllers.DeleteProduct(svcs.Products, logg))
				r.Get("/price", controllers.ProductPrice(svcs.Quotes, logg))

				r.Route("/price-entries", func(r chi.Router) {
					r.Get("/", controllers.ListPriceEntries(svcs.PriceBook, logg))
					r.Post("/", controllers.CreatePriceEntry(svcs.PriceBook, logg))
					r.Get("/current", controllers.CurrentPriceEntry(svcs.PriceBook, logg))
					r.Post("/unpin-all", controllers.UnpinAllPriceEntries(svcs.PriceBook, logg))
					r.Post("/{entryID}/pin", controllers.PinPriceEntry(svcs.PriceBook, logg))
					r.Post("/{entryID}/unpin", controllers.UnpinPriceEntry(svcs.PriceBook, logg))
					r.Patch("/{entryID}", controllers.UpdatePriceEntry(svcs.PriceBook, logg))
					r.Delete("/{entryID}", controllers.DeletePriceEntry(svcs.PriceBook, logg))
				})
			})
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.ListPurchases(svcs.Purchases, logg))
			r.Post("/", controllers.CreatePurchase(svcs.Purchases, logg))
			r.Post("/import", controllers.ImportPurchases(svcs.Importer, logg))
			r.Get("/{id}", controllers.GetPurchase(svcs.Purchases, logg))
			r.Patch("/{id}", controllers.UpdatePurchase(svcs.Purchases, logg))
			r.Delete("/{id}", controllers.DeletePurchase(svcs.Purchases, logg))
		})

		r.Get("/audit/{entity}/{entityID}", controllers.ListAuditRecords(svcs.Audit, logg))
	})

	return r
}
