package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pocket-pos/internal/config"
	custommiddleware "pocket-pos/internal/middleware"
	"pocket-pos/internal/repository"
	"pocket-pos/internal/service"
	"pocket-pos/internal/storage"
	"pocket-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	slot   storage.Slot
}

func NewServer(cfg *config.Config, logger *zap.Logger, slot storage.Slot) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	// Health check endpoint reads the products slot to prove the medium answers
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if _, err := slot.Get(ctx, cfg.Storage.ProductsKey); err != nil && !errors.Is(err, storage.ErrSlotEmpty) {
			logger.Warn("Health check failed", zap.Error(err))
			custommiddleware.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(slot, cfg.Storage.ProductsKey)
	saleRepo := repository.NewSaleRepository(slot, cfg.Storage.SalesKey)

	// Initialize services
	inventoryService := service.NewInventoryService(productRepo, saleRepo)
	saleService := service.NewSaleService(productRepo, saleRepo, cfg.Sale.DecrementStock)

	// Initialize handlers and register routes
	transport.NewProductHandler(inventoryService, logger).RegisterRoutes(router)
	transport.NewSaleHandler(saleService, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		slot:   slot,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close storage
	if s.slot != nil {
		if err := s.slot.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
