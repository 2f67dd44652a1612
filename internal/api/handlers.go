package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gaocuixia/running-journal/internal/apperr"
	"github.com/gaocuixia/running-journal/internal/importer"
	"github.com/gaocuixia/running-journal/internal/journal"
)

const maxUploadBytes = 10 << 20

// Handler holds API route handlers over the record store.
type Handler struct {
	store *journal.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *journal.Store) *Handler {
	return &Handler{store: store}
}

func recordID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// sortAscending interprets the sort query parameter. Descending (most
// recent first) is the default direction.
func sortAscending(r *http.Request) bool {
	return r.URL.Query().Get("sort") == "asc"
}

// ListArticles handles GET /api/articles with optional category filter
// and date sort direction.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	items := journal.FilterArticlesByCategory(h.store.Articles(), category)
	items = journal.SortArticlesByDate(items, sortAscending(r))
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: items, Total: len(items)})
}

// CreateArticle handles POST /api/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	a := req.toModel()
	if a.Date == "" {
		a.Date = time.Now().Format("2006-01-02")
	}
	writeJSON(w, http.StatusCreated, h.store.AddArticle(a))
}

// UpdateArticle handles PUT /api/articles/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !h.store.UpdateArticle(id, req.toModel()) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteArticle handles DELETE /api/articles/{id}.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if !h.store.RemoveArticle(id) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/events with the same filter and sort
// parameters as articles.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	items := journal.FilterEventsByCategory(h.store.Events(), category)
	items = journal.SortEventsByDate(items, sortAscending(r))
	writeJSON(w, http.StatusOK, EventListResponse{Events: items, Total: len(items)})
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e := req.toModel()
	if e.Date == "" {
		e.Date = time.Now().Format("2006-01-02")
	}
	writeJSON(w, http.StatusCreated, h.store.AddEvent(e))
}

// UpdateEvent handles PUT /api/events/{id}.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !h.store.UpdateEvent(id, req.toModel()) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if !h.store.RemoveEvent(id) {
		writeJSON(w, http.StatusNotFound, errorBody(apperr.ErrNotFound.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/export: the full journal as a downloadable
// JSON document named with the current date.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	bundle := importer.Bundle{Articles: snap.Articles, Events: snap.Events}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	filename := fmt.Sprintf("running_data_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportJSON handles POST /api/import: a bundle or legacy article array,
// either as the raw request body or as a multipart "file" part.
func (h *Handler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := importPayload(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	bundle, err := importer.ParseBundle(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	count := h.store.MergeImport(bundle.Articles, bundle.Events)
	writeJSON(w, http.StatusOK, ImportResponse{Imported: count})
}

// ImportSheet handles POST /api/import/events: an .xlsx upload whose
// first worksheet holds race records. The batch is all-or-nothing; each
// rejection reason gets its own message.
func (h *Handler) ImportSheet(w http.ResponseWriter, r *http.Request) {
	data, err := importPayload(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}
	rows, err := importer.ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unreadable spreadsheet"))
		return
	}
	batch, err := importer.NormalizeSheet(rows, time.Now(), h.store.EventIDs())
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInsufficientData),
			errors.Is(err, apperr.ErrMissingColumns),
			errors.Is(err, apperr.ErrNoValidRows):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("sheet import failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	count := h.store.AppendEvents(batch)
	writeJSON(w, http.StatusOK, ImportResponse{Imported: count})
}

// importPayload reads an upload either from a multipart "file" part or
// from the raw request body.
func importPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}
