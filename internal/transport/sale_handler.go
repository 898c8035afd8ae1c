package transport

import (
	"net/http"

	"pocket-pos/internal/middleware"
	"pocket-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the payload adding a product to a basket
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// SaleHandler handles HTTP requests for baskets and sales
type SaleHandler struct {
	sales  service.SaleService
	logger *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		sales:  sales,
		logger: logger,
	}
}

// RegisterRoutes registers basket and sales routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/baskets", func(r chi.Router) {
		r.Post("/", h.OpenBasket)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetBasket)
			r.Delete("/", h.AbandonBasket)
			r.Post("/items", h.AddItem)
			r.Delete("/items/{productID}", h.RemoveItem)
			r.Post("/clear", h.ClearBasket)
			r.Post("/sell", h.Sell)
		})
	})

	r.Get("/api/sales", h.ListSales)
}

func (h *SaleHandler) OpenBasket(w http.ResponseWriter, r *http.Request) {
	view := h.sales.OpenBasket()
	h.logger.Debug("Basket opened", zap.String("basket_id", view.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

func (h *SaleHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	view, err := h.sales.Basket(chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *SaleHandler) AbandonBasket(w http.ResponseWriter, r *http.Request) {
	if err := h.sales.AbandonBasket(chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem adds one unit of a product to the basket
func (h *SaleHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Basket item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sales.AddToBasket(r.Context(), chi.URLParam(r, "id"), req.ProductID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *SaleHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.sales.RemoveFromBasket(chi.URLParam(r, "id"), chi.URLParam(r, "productID"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *SaleHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	view, err := h.sales.ClearBasket(chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Sell checks out the basket and returns the recorded sale
func (h *SaleHandler) Sell(w http.ResponseWriter, r *http.Request) {
	sale, err := h.sales.Sell(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Basket sold",
		zap.String("sale_id", sale.ID),
		zap.Int("quantity", sale.Totals.Quantity),
		zap.String("cost", sale.Totals.Cost.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.Sales(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}
