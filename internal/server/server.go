package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joseph-ayodele/vintrade/internal/export"
	"github.com/joseph-ayodele/vintrade/internal/repository"
	"github.com/joseph-ayodele/vintrade/internal/vehicle"
)

// Config carries the collaborators the HTTP layer wires together.
type Config struct {
	Addr     string
	Vehicles *vehicle.Service
	Partners repository.PartnerRepository
	Wallets  repository.WalletRepository
	Invoices repository.InvoiceRepository
	Export   *export.Service
	DB       *repository.DB
	Logger   *slog.Logger
}

// Server is the HTTP front of the trading service.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	vehicles *vehicle.Service
	partners repository.PartnerRepository
	wallets  repository.WalletRepository
	invoices repository.InvoiceRepository
	export   *export.Service
	db       *repository.DB
	logger   *slog.Logger
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:   chi.NewRouter(),
		vehicles: cfg.Vehicles,
		partners: cfg.Partners,
		wallets:  cfg.Wallets,
		invoices: cfg.Invoices,
		export:   cfg.Export,
		db:       cfg.DB,
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", s.handleRegisterVehicle)
			r.Get("/", s.handleListVehicles)
			r.Get("/vin/{vin}", s.handleGetVehicleByVIN)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetVehicle)
				r.Patch("/", s.handleUpdateVehicle)
				r.Post("/status", s.handleSetStatus)
				r.Post("/decode", s.handleRefreshDecode)
				r.Post("/vendor-bill", s.handleCreateVendorBill)
				r.Post("/customer-invoice", s.handleCreateCustomerInvoice)
			})
		})

		r.Route("/partners", func(r chi.Router) {
			r.Post("/", s.handleCreatePartner)
			r.Get("/", s.handleListPartners)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPartner)
				r.Patch("/credit", s.handleSetCreditProfile)
				r.Post("/wallet", s.handleAddWalletMove)
				r.Get("/wallet", s.handleListWalletMoves)
				r.Get("/statement.xlsx", s.handleStatement)
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/{id}", s.handleGetInvoice)
			r.Post("/{id}/cancel", s.handleCancelInvoice)
		})
	})
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server.listen", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context(), 2*time.Second, s.logger); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("server.http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"req_id", middleware.GetReqID(r.Context()))
	})
}
