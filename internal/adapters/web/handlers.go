package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventory-service/internal/app"
	"inventory-service/internal/core"
	"inventory-service/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxBodyBytes   = 1 << 20 // 1 MiB
	requestTimeout = 30 * time.Second
)

// Options configures NewHandler.
type Options struct {
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins string
	// Limiter throttles requests per client IP; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

// Handler holds the ApplicationService and the token settings its routes share.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	jwtTTL    time.Duration
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 24 * time.Hour
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		jwtTTL:    opts.JWTTTL,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(RequestLogger(opts.Logger))
	r.Use(Recoverer)
	r.Use(Tracing)
	r.Use(SecurityHeaders)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RateLimit(opts.Limiter))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(RequestBodyLimit(maxBodyBytes))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (return 401 JSON if unauthenticated) ─────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/me", h.me)
		r.Get("/api/users", h.listUsers)
		r.Post("/api/users", h.createUser)

		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
			r.Patch("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
			r.Post("/{id}/adjust-stock", h.adjustStock)
			r.Get("/{id}/stock-history", h.stockHistory)
		})

		r.Route("/api/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Patch("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
		})

		r.Route("/api/purchase-orders", func(r chi.Router) {
			r.Get("/", h.listPurchaseOrders)
			r.Post("/", h.createPurchaseOrder)
			r.Get("/{id}", h.getPurchaseOrder)
			r.Post("/{id}/status", h.advancePurchaseOrder)
			r.Delete("/{id}", h.deletePurchaseOrder)
		})

		r.Route("/api/sales-orders", func(r chi.Router) {
			r.Get("/", h.listSalesOrders)
			r.Post("/", h.createSalesOrder)
			r.Get("/{id}", h.getSalesOrder)
			r.Post("/{id}/status", h.advanceSalesOrder)
			r.Post("/{id}/cancel", h.cancelSalesOrder)
		})

		r.Get("/api/dashboard/stats", h.dashboardStats)
		r.Get("/api/reports/low-stock", h.lowStockReport)
		r.Get("/api/reports/inventory-value", h.inventoryValueReport)
		r.Get("/api/reports/inventory.xlsx", h.inventoryWorkbook)
		r.Get("/api/reports/order-history/{product_id}", h.orderHistoryReport)
	})

	return r
}

// health reports liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter, writing a 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeServiceError(w, r, &core.ValidationError{Field: name, Message: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// queryParser reads typed query parameters, keeping the first failure.
type queryParser struct {
	q   url.Values
	err error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{q: r.URL.Query()}
}

func (p *queryParser) fail(key, msg string) {
	if p.err == nil {
		p.err = &core.ValidationError{Field: key, Message: msg}
	}
}

func (p *queryParser) string(key string) string {
	return strings.TrimSpace(p.q.Get(key))
}

func (p *queryParser) int(key string) int {
	raw := p.string(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		p.fail(key, "must be a non-negative integer")
		return 0
	}
	return n
}

func (p *queryParser) bool(key string) bool {
	raw := p.string(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, "must be true or false")
	}
	return b
}

func (p *queryParser) decimal(key string) *decimal.Decimal {
	raw := p.string(key)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(key, "must be a number")
		return nil
	}
	return &d
}

func (p *queryParser) page() core.Page {
	return core.Page{Page: p.int("page"), Limit: p.int("limit")}
}
