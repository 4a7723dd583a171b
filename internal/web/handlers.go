// handlers.go
package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pricecompare/internal/catalog"
	"pricecompare/internal/session"
	"pricecompare/internal/sheet"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

type recalcForm struct {
	Percentage string `validate:"required"`
	Scope      string `validate:"required,oneof=selected category all"`
	Generation string `validate:"omitempty,uuid"`
}

type selectForm struct {
	Action string `validate:"required,oneof=toggle all none"`
	Code   string `validate:"required_if=Action toggle"`
}

type calculateForm struct {
	Cols      []string `validate:"required,min=1,dive,oneof=stock unit_cost net_cost sale_price suggested_price margin"`
	Operation string   `validate:"required,oneof=sum average median min max count std"`
}

func readFilters(r *http.Request) (filterForm, catalog.Filters, error) {
	form := filterForm{
		Query:     r.FormValue("q"),
		Category:  r.FormValue("category"),
		Stock:     r.FormValue("stock"),
		Reconcile: r.FormValue("reconcile"),
	}
	if form.Category == "" {
		form.Category = catalog.AllCategories
	}
	stock, err := catalog.ParseStockFilter(form.Stock)
	if err != nil {
		return form, catalog.Filters{}, err
	}
	form.Stock = string(stock)
	policy := catalog.Reconcile("")
	if form.Reconcile != "" {
		if policy, err = catalog.ParseReconcile(form.Reconcile); err != nil {
			return form, catalog.Filters{}, err
		}
	}
	return form, catalog.Filters{
		Query:     form.Query,
		Category:  form.Category,
		Stock:     stock,
		Reconcile: policy,
	}, nil
}

func (f filterForm) values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Category != "" && f.Category != catalog.AllCategories {
		v.Set("category", f.Category)
	}
	if f.Stock != "" && f.Stock != string(catalog.StockAll) {
		v.Set("stock", f.Stock)
	}
	if f.Reconcile != "" {
		v.Set("reconcile", f.Reconcile)
	}
	return v
}

func displayURL(f filterForm, extra url.Values) string {
	v := f.values()
	for k, vals := range extra {
		v[k] = vals
	}
	if len(v) == 0 {
		return "/display"
	}
	return "/display?" + v.Encode()
}

func (h *Handler) uploadHandler(w http.ResponseWriter, r *http.Request) {
	h.renderUpload(w, http.StatusOK, "")
}

func (h *Handler) renderUpload(w http.ResponseWriter, status int, message string) {
	data := UploadData{Error: message, MaxBytes: h.config.UploadMaxBytes}
	if summary, ok := h.session.Summary(); ok {
		data.Summary = &summary
	}
	var buf bytes.Buffer
	if err := uploadTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render upload", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func allowedFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".csv") ||
		strings.HasSuffix(name, ".xlsx") ||
		strings.HasSuffix(name, ".xls")
}

func (h *Handler) readUpload(fh *multipart.FileHeader) (session.File, error) {
	if !allowedFile(fh.Filename) {
		return session.File{}, fmt.Errorf("%w: %s", errInvalidFileType, fh.Filename)
	}
	file, err := fh.Open()
	if err != nil {
		return session.File{}, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.config.UploadMaxBytes+1))
	if err != nil {
		return session.File{}, err
	}
	if int64(len(data)) > h.config.UploadMaxBytes {
		return session.File{}, fmt.Errorf("%w: %s", errFileTooLarge, fh.Filename)
	}
	return session.File{Name: path.Base(fh.Filename), Data: data}, nil
}

func (h *Handler) readUploads(r *http.Request, field string) ([]session.File, error) {
	if err := r.ParseMultipartForm(h.config.UploadMaxBytes); err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, errFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", errBadUpload, err)
	}
	if r.MultipartForm == nil {
		return nil, session.ErrNoFiles
	}
	headers := r.MultipartForm.File[field]
	files := make([]session.File, 0, len(headers))
	for _, fh := range headers {
		f, err := h.readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (h *Handler) uploadPostHandler(w http.ResponseWriter, r *http.Request) {
	files, err := h.readUploads(r, "files")
	if err == nil {
		_, err = h.session.Upload(r.Context(), files)
	}
	if err != nil {
		h.renderUpload(w, statusFor(err), userMessage(err))
		return
	}
	http.Redirect(w, r, "/display", http.StatusSeeOther)
}

func (h *Handler) displayHandler(w http.ResponseWriter, r *http.Request) {
	if !h.session.Loaded() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form, filters, err := readFilters(r)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	summary, _ := h.session.Summary()
	entries := h.session.View(filters)

	selected := make(map[string]bool)
	for _, code := range h.session.Selected() {
		selected[code] = true
	}
	var flash string
	if changed := r.URL.Query().Get("changed"); changed != "" {
		flash = fmt.Sprintf("%s precios actualizados", changed)
	}

	exportXLSX := form.values()
	exportXLSX.Set("format", "xlsx")
	exportCSV := form.values()
	exportCSV.Set("format", "csv")

	data := DisplayData{
		Summary:       summary,
		Entries:       entries,
		Filters:       form,
		ExportXLSX:    safeURL("/export?" + exportXLSX.Encode()),
		ExportCSV:     safeURL("/export?" + exportCSV.Encode()),
		Selected:      selected,
		Generation:    h.session.Generation(),
		DefaultMarkup: h.config.DefaultMarkup,
		StockFilters:  []catalog.StockFilter{catalog.StockAll, catalog.StockExcludeZero, catalog.StockOnlyZero, catalog.StockOnlyNegative},
		Policies:      []catalog.Reconcile{catalog.ReconcileFirst, catalog.ReconcileMax, catalog.ReconcileMin, catalog.ReconcileAverage},
		Fields:        catalog.Fields,
		Operations:    catalog.Operations,
		Flash:         flash,
	}
	if data.Filters.Reconcile == "" {
		data.Filters.Reconcile = string(h.config.Reconcile())
	}

	var buf bytes.Buffer
	if err := displayTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render display", slog.Any("error", err))
		http.Error(w, "Failed to display data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) recalculateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := recalcForm{
		Percentage: r.PostFormValue("percentage"),
		Scope:      r.PostFormValue("scope"),
		Generation: r.PostFormValue("generation"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.pageError(w, r, err)
		return
	}
	viewForm, filters, err := readFilters(r)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	pct, err := catalog.ParsePercentage(form.Percentage)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	changed, err := h.session.Recalculate(session.RecalcRequest{
		Percentage:     pct,
		Scope:          catalog.Scope(form.Scope),
		ActiveCategory: filters.Category,
		Generation:     form.Generation,
	})
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, displayURL(viewForm, url.Values{"changed": {strconv.Itoa(changed)}}), http.StatusSeeOther)
}

func (h *Handler) selectHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := selectForm{Action: r.PostFormValue("action"), Code: r.PostFormValue("code")}
	if err := h.validator.Struct(form); err != nil {
		h.pageError(w, r, err)
		return
	}
	viewForm, filters, err := readFilters(r)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	switch form.Action {
	case "toggle":
		h.session.Toggle(form.Code)
	case "all":
		h.session.SelectAll(catalog.Codes(h.session.View(filters)))
	case "none":
		h.session.ClearSelection()
	}
	http.Redirect(w, r, displayURL(viewForm, nil), http.StatusSeeOther)
}

func (h *Handler) calculateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := calculateForm{Cols: r.PostForm["cols"], Operation: r.PostFormValue("operation")}
	if err := h.validator.Struct(form); err != nil || !h.session.Loaded() {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	viewForm, filters, err := readFilters(r)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	records := h.session.Records(filters)

	var results []CalculationResult
	for _, col := range form.Cols {
		value, err := catalog.Aggregate(records, catalog.Field(col), form.Operation)
		if err != nil {
			continue
		}
		results = append(results, CalculationResult{Col: col, Value: value})
	}
	if len(results) == 0 {
		http.Error(w, "No valid calculations", http.StatusBadRequest)
		return
	}

	summary, _ := h.session.Summary()
	page := ResultPage{
		Operation: cases.Title(language.Spanish).String(form.Operation),
		Results:   results,
		Sources:   summary.Sources,
		Timestamp: h.now().Format("January 2, 2006 at 3:04 PM"),
		BackLink:  displayURL(viewForm, nil),
	}
	var buf bytes.Buffer
	if err := resultTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("render results", slog.Any("error", err))
		http.Error(w, "Failed to render results", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) exportHandler(w http.ResponseWriter, r *http.Request) {
	_, filters, err := readFilters(r)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	grid, err := h.session.Export(filters)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	filename := h.config.ExportFilename
	contentType := contentTypeXLSX
	var buf bytes.Buffer
	switch r.URL.Query().Get("format") {
	case "", "xlsx":
		err = sheet.WriteXLSX(&buf, grid, h.config.ExportSheet)
	case "csv":
		filename = strings.TrimSuffix(filename, path.Ext(filename)) + ".csv"
		contentType = contentTypeCSV
		err = sheet.WriteCSV(&buf, grid)
	default:
		http.Error(w, "Invalid export format", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	h.logger.Info("comparison exported", slog.Int("products", len(grid.Rows)), slog.String("file", filename))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
