package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grocer/internal/cart"
	"github.com/dukerupert/grocer/internal/catalog"
	"github.com/dukerupert/grocer/internal/handler"
	"github.com/dukerupert/grocer/internal/metrics"
	"github.com/dukerupert/grocer/internal/middleware"
	"github.com/dukerupert/grocer/internal/model"
	"github.com/dukerupert/grocer/internal/rpc"
	ws "github.com/dukerupert/grocer/internal/websocket"
)

const rateWindow = time.Minute

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Catalog *catalog.Store
	Cart    *cart.Service
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// RateLimit is the number of mutating calls allowed per client IP per
	// minute; zero disables limiting.
	RateLimit int
	// OriginPatterns lists extra origins allowed to open /ws.
	OriginPatterns []string
}

// Server routes HTTP, RPC and websocket traffic to the catalog and cart.
type Server struct {
	catalogH    *handler.CatalogHandler
	cartH       *handler.CartHandler
	rpcH        *rpc.Handler
	hub         *ws.Hub
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
	rateLimit   int
	origins     []string
	logger      *slog.Logger
}

// New builds a Server; Deps.Logger is required, Metrics and Hub are optional.
func New(d Deps) *Server {
	return &Server{
		catalogH:    handler.NewCatalogHandler(d.Catalog),
		cartH:       handler.NewCartHandler(d.Cart, d.Logger.With("component", "cart_handler")),
		rpcH:        rpc.NewHandler(d.Catalog, d.Cart, d.Logger.With("component", "rpc")),
		hub:         d.Hub,
		metrics:     d.Metrics,
		rateLimiter: middleware.NewRateLimiter(),
		rateLimit:   d.RateLimit,
		origins:     d.OriginPatterns,
		logger:      d.Logger,
	}
}

// CartNotifier turns cart mutations into websocket broadcasts.
func CartNotifier(hub *ws.Hub) cart.Notifier {
	return func(action cart.Action, item model.GroceryItem) {
		hub.Broadcast(ws.NewMessage("cart_item", string(action), item.ID, map[string]any{
			"completed": item.Completed,
		}))
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router returns the full handler chain: request id, request logging,
// metrics, then the route mux.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Catalog
	mux.HandleFunc("GET /api/categories", s.catalogH.ListCategories)
	mux.HandleFunc("GET /api/categories/items/{id}", s.catalogH.GetItem)
	mux.HandleFunc("GET /api/categories/search", s.catalogH.Search)

	// Cart
	mux.HandleFunc("GET /api/cart", s.cartH.ListItems)
	mux.HandleFunc("GET /api/cart/summary", s.cartH.Summary)
	mux.HandleFunc("POST /api/cart/{id}", s.rateLimitedHandler(s.cartH.AddItem))
	mux.HandleFunc("DELETE /api/cart/{id}", s.rateLimitedHandler(s.cartH.RemoveItem))
	mux.HandleFunc("POST /api/cart/{id}/toggle", s.rateLimitedHandler(s.cartH.ToggleItem))

	// RPC surface
	mux.HandleFunc("POST /rpc/{method}", s.rpcHandler())

	// WebSocket
	if s.hub != nil {
		mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"), s.origins...))
	}

	var h http.Handler = mux
	if s.metrics != nil {
		h = middleware.Metrics(s.metrics)(h)
	}
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.rateLimit, rateWindow)
	return rl(h).ServeHTTP
}

// rpcHandler applies the rate limit to mutating methods only.
func (s *Server) rpcHandler() http.HandlerFunc {
	limited := s.rateLimitedHandler(s.rpcH.ServeHTTP)
	return func(w http.ResponseWriter, r *http.Request) {
		if rpc.Mutating(r.PathValue("method")) {
			limited(w, r)
			return
		}
		s.rpcH.ServeHTTP(w, r)
	}
}
