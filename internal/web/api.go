// api.go
package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pricecompare/internal/catalog"
	"pricecompare/internal/session"
)

type recalcPayload struct {
	Percentage json.RawMessage `json:"percentage" validate:"required"`
	Scope      string          `json:"scope" validate:"required,oneof=selected category all"`
	Category   string          `json:"category"`
	Generation string          `json:"generation" validate:"omitempty,uuid"`
	Codes      []string        `json:"codes"`
}

// percentage accepts a JSON number or a string holding one.
func (p recalcPayload) percentage() (float64, error) {
	raw := bytes.TrimSpace(p.Percentage)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, catalog.ErrInvalidPercentage
		}
		return catalog.ParsePercentage(s)
	}
	return catalog.ParsePercentage(string(raw))
}

type productsPayload struct {
	Generation string                    `json:"generation"`
	Selected   []string                  `json:"selected"`
	Products   []catalog.ComparisonEntry `json:"products"`
}

func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *Handler) summaryAPIHandler(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.session.Summary()
	if !ok {
		h.problem(w, r, errNotLoaded)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]any{
		"generation": h.session.Generation(),
		"summary":    summary,
	}})
}

func (h *Handler) productsAPIHandler(w http.ResponseWriter, r *http.Request) {
	if !h.session.Loaded() {
		h.problem(w, r, errNotLoaded)
		return
	}
	_, filters, err := readFilters(r)
	if err != nil {
		h.problem(w, r, err)
		return
	}
	products := h.session.View(filters)
	if products == nil {
		products = []catalog.ComparisonEntry{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: productsPayload{
		Generation: h.session.Generation(),
		Selected:   h.session.Selected(),
		Products:   products,
	}})
}

func (h *Handler) recalculateAPIHandler(w http.ResponseWriter, r *http.Request) {
	var payload recalcPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ProblemDetail{
			Title:  http.StatusText(http.StatusBadRequest),
			Status: http.StatusBadRequest,
			Detail: "malformed JSON body",
		})
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		h.problem(w, r, err)
		return
	}
	pct, err := payload.percentage()
	if err != nil {
		h.problem(w, r, err)
		return
	}
	category := payload.Category
	if strings.TrimSpace(category) == "" {
		category = catalog.AllCategories
	}
	changed, err := h.session.Recalculate(session.RecalcRequest{
		Percentage:     pct,
		Scope:          catalog.Scope(payload.Scope),
		ActiveCategory: category,
		Generation:     payload.Generation,
		Codes:          payload.Codes,
	})
	if err != nil {
		h.problem(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]any{
		"changed":    changed,
		"generation": h.session.Generation(),
	}})
}

// validateFileHandler decodes one file and reports what an upload of it
// would contain, without replacing the session catalog.
func (h *Handler) validateFileHandler(w http.ResponseWriter, r *http.Request) {
	files, err := h.readUploads(r, "file")
	if err != nil {
		h.problem(w, r, err)
		return
	}
	_, summary, err := session.Load(r.Context(), h.decoder, files)
	if err != nil {
		h.problem(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]any{
		"status":  "File valid",
		"summary": summary,
	}})
}
