package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/qrenard/patrimoine/config"
	"github.com/qrenard/patrimoine/internal/transport/rest/middleware"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg *config.Config, ctrl *Controller) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      newRouter(ctrl),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

func newRouter(ctrl *Controller) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", ctrl.ListAccounts)
			r.Post("/", ctrl.CreateAccount)
			r.Get("/types", ctrl.ListAccountTypes)
			r.Get("/full", ctrl.GetAccountsFull)
			r.Put("/cash", ctrl.UpdateEnvelopeCash)
			r.Get("/{id}", ctrl.GetAccount)
			r.Delete("/{id}", ctrl.DeleteAccount)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ctrl.ListOrders)
			r.Post("/", ctrl.CreateOrder)
			r.Post("/import", ctrl.ImportOrders)
			r.Get("/account/{accountID}/type/{typeID}", ctrl.ListOrdersByEnvelope)
			r.Put("/{id}", ctrl.UpdateOrder)
			r.Delete("/{id}", ctrl.DeleteOrder)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/history", ctrl.ListHistory)
			r.Post("/history/sample", ctrl.SampleHistory)
			r.Post("/history/import", ctrl.ImportHistory)
			r.Get("/report", ctrl.DownloadReport)
		})

		r.Get("/stock/{symbol}", ctrl.GetStockQuote)
		r.Post("/tickers/refresh", ctrl.RefreshTickers)
	})

	return router
}

func (s *Server) Start() error {
	slog.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
