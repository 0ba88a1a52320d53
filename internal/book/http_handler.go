package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger.Named("book")}
}

// formRequest is the JSON form of BookFormInput. The id, when present, comes
// from the path.
type formRequest struct {
	Title    string  `json:"title" validate:"max=500"`
	Author   string  `json:"author" validate:"max=500"`
	GenreIDs []int64 `json:"genre_ids"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

// List handles GET /v1/books
// @Summary List my books
// @Tags books
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListMine(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err, true)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// Get handles GET /v1/books/{id}
// @Summary Get one of my books
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path int true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	b, err := h.service.Get(r.Context(), id, httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err, true)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Form handles GET /v1/books/form and GET /v1/books/{id}/form
// @Summary Get create or edit form data with genre options
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path int false "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/form [get]
func (h *HTTPHandler) Form(w http.ResponseWriter, r *http.Request) {
	var id int64
	if r.PathValue("id") != "" {
		var ok bool
		if id, ok = pathID(r); !ok {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
	}

	view, err := h.service.Form(r.Context(), id, httpx.UserIDFrom(r))
	if err != nil {
		h.writeError(w, r, err, true)
		return
	}
	httpx.JSONSuccess(w, r, view, nil)
}

// Create handles POST /v1/books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body formRequest true "Book form"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeForm(w, r)
	if !ok {
		return
	}

	id, err := h.service.Create(r.Context(), httpx.UserIDFrom(r), req.Title, req.Author, req.GenreIDs)
	if err != nil {
		h.writeError(w, r, err, false)
		return
	}
	httpx.JSONCreated(w, r, idResponse{ID: id})
}

// Update handles PUT /v1/books/{id}
// @Summary Replace a book's title, author and genres
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Book ID"
// @Param request body formRequest true "Book form"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}
	req, ok := decodeForm(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, httpx.UserIDFrom(r), req.Title, req.Author, req.GenreIDs); err != nil {
		h.writeError(w, r, err, false)
		return
	}
	httpx.JSONSuccess(w, r, idResponse{ID: id}, nil)
}

// Delete handles DELETE /v1/books/{id}
// @Summary Delete a book and its genre links
// @Tags books
// @Security Bearer
// @Param id path int true "Book ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id, httpx.UserIDFrom(r)); err != nil {
		h.writeError(w, r, err, false)
		return
	}
	httpx.JSONNoContent(w)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeForm(w http.ResponseWriter, r *http.Request) (formRequest, bool) {
	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return formRequest{}, false
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return formRequest{}, false
	}
	return req, true
}

// writeError maps service errors to responses. On reads a foreign book is
// reported as missing so its existence is not disclosed.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, read bool) {
	var validationErr *ValidationError
	var genreErr *InvalidGenreError

	switch {
	case errors.As(err, &validationErr):
		details := make([]httpx.ErrorDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
	case errors.As(err, &genreErr):
		var details []httpx.ErrorDetail
		for _, id := range genreErr.IDs {
			details = append(details, httpx.ErrorDetail{Field: "genre_ids", Message: "unknown genre " + strconv.FormatInt(id, 10)})
		}
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "INVALID_GENRE", "One or more genres do not exist", details)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrNotAuthorized) && read:
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrNotAuthorized):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "You do not own this book", nil)
	default:
		h.logger.Error("book request failed",
			zap.String("request_id", httpx.RequestIDFrom(r)),
			zap.String("user_id", httpx.UserIDFrom(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
