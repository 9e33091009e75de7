package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KotFed0t/invest_assistant/config"
	mw "github.com/KotFed0t/invest_assistant/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	server *http.Server
}

func NewServer(cfg *config.Config, controller *Controller) *Server {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(mw.RequestID)
	router.Use(mw.Logging)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", controller.Health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/users", controller.RegisterUser)
		r.Get("/users/me", controller.GetCurrentUser)

		r.Get("/market", controller.GetMarket)

		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", controller.GetStocks)
			r.Get("/search", controller.SearchStocks)
			r.Get("/{symbol}", controller.GetStock)
		})

		r.Route("/portfolios", func(r chi.Router) {
			r.Post("/", controller.CreatePortfolio)
			r.Get("/", controller.GetPortfolios)

			r.Route("/{portfolioID}", func(r chi.Router) {
				r.Get("/", controller.GetPortfolio)
				r.Post("/positions", controller.AddPosition)
				r.Put("/positions/{symbol}", controller.UpdatePosition)
				r.Delete("/positions/{symbol}", controller.RemovePosition)
				r.Post("/cash", controller.AdjustCash)
				r.Get("/analyze", controller.AnalyzePortfolio)
				r.Get("/report", controller.GetPortfolioReport)
			})
		})

		r.Get("/holdings", controller.GetHoldings)
		r.Get("/summary", controller.GetPortfolioSummary)

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", controller.GetWatchlist)
			r.Post("/", controller.AddToWatchlist)
			r.Delete("/{symbol}", controller.RemoveFromWatchlist)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", controller.GetRecommendations)
			r.Post("/refresh", controller.RefreshRecommendations)
		})

		r.Post("/chat", controller.Chat)
		r.Delete("/chat", controller.ClearChat)

		r.Get("/analyze/{symbol}", controller.AnalyzeStock)
	})

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      router,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting HTTP server", slog.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
