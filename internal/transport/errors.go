package transport

import (
	"errors"
	"net/http"

	"pocket-pos/internal/middleware"
	"pocket-pos/internal/repository"
	"pocket-pos/internal/service"

	"go.uber.org/zap"
)

// respondWithServiceError maps a service failure onto the error envelope
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		fields := make([]middleware.ValidationError, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			fields = append(fields, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		middleware.RespondWithValidationErrors(w, fields)

	case repository.IsStorageError(err):
		middleware.RespondWithStorageError(w, r, logger, err)

	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")

	case errors.Is(err, service.ErrBasketNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "basket not found")

	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrEmptyBasket),
		errors.Is(err, service.ErrSalePending),
		errors.Is(err, repository.ErrProductExists):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	default:
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
