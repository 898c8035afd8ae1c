package transport

import (
	"net/http"

	"pocket-pos/internal/middleware"
	"pocket-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest represents the product form payload
type ProductRequest struct {
	Name     FormValue `json:"name"`
	Price    FormValue `json:"price"`
	Quantity FormValue `json:"quantity"`
	Category string    `json:"category"`
	Details  string    `json:"details"`
	// Description is accepted from older clients in place of details
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

func (req ProductRequest) form() service.ProductForm {
	details := req.Details
	if details == "" {
		details = req.Description
	}
	return service.ProductForm{
		Name:     string(req.Name),
		Price:    string(req.Price),
		Quantity: string(req.Quantity),
		Category: req.Category,
		Details:  details,
		Image:    req.Image,
	}
}

// ProductHandler handles HTTP requests for the inventory
type ProductHandler struct {
	inventory service.InventoryService
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(inventory service.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		inventory: inventory,
		logger:    logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard", h.Dashboard)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts returns products sorted by name, filtered by the q parameter
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		h.logger.Debug("Product request rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventory.CreateProduct(r.Context(), req.form())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.inventory.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeJSON(r, &req); err != nil {
		h.logger.Debug("Product request rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventory.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.form())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product; unknown ids are treated as already deleted
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.inventory.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.inventory.Dashboard(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}
