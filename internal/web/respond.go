package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"pricecompare/internal/catalog"
	"pricecompare/internal/session"
)

var (
	errInvalidFileType = errors.New("invalid file type")
	errFileTooLarge    = errors.New("file too large")
	errNotLoaded       = errors.New("no catalog loaded")
	errBadUpload       = errors.New("malformed upload")
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func statusFor(err error) int {
	var decodeErr *catalog.DecodeError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &decodeErr),
		errors.As(err, &validationErrs),
		errors.Is(err, session.ErrNoFiles),
		errors.Is(err, catalog.ErrInvalidPercentage),
		errors.Is(err, catalog.ErrInvalidScope),
		errors.Is(err, catalog.ErrInvalidFilter),
		errors.Is(err, catalog.ErrEmptyExport),
		errors.Is(err, catalog.ErrUnknownField),
		errors.Is(err, catalog.ErrUnsupportedOperation),
		errors.Is(err, catalog.ErrNoValues),
		errors.Is(err, errInvalidFileType),
		errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStaleGeneration):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown for err on the pages.
func userMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrInvalidPercentage):
		return "Por favor, ingresa un porcentaje válido."
	case errors.Is(err, catalog.ErrEmptyExport):
		return "No hay productos para exportar."
	case errors.Is(err, session.ErrNoFiles):
		return "Por favor selecciona al menos un archivo Excel"
	case errors.Is(err, session.ErrStaleGeneration):
		return "Los archivos cambiaron; recarga la comparación."
	}
	if statusFor(err) == http.StatusInternalServerError {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

func (h *Handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	http.Error(w, userMessage(err), status)
}

func (h *Handler) problem(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("api request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: userMessage(err),
	})
}
