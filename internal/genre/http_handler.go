package genre

import (
	"net/http"

	"go.uber.org/zap"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewHTTPHandler(catalog Catalog, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{catalog: catalog, logger: logger.Named("genre")}
}

// List handles GET /v1/genres
// @Summary List all genres
// @Tags genres
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/genres [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.logger.Error("list genres failed", zap.String("request_id", httpx.RequestIDFrom(r)), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, genres, map[string]any{"total": len(genres)})
}
