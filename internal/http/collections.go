package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/tapdev/tapdev-site/internal/collections"
)

func (api *AdminAPI) registerCollectionRoutes(protect func(string, http.HandlerFunc), base string) {
	root := joinPath(base, "collections")
	protect("GET "+root, api.handleCollectionTables)
	protect("GET "+root+"/{table}", api.handleCollectionList)
	protect("POST "+root+"/{table}", api.handleCollectionCreate)
	protect("PATCH "+root+"/{table}/{id}", api.handleCollectionUpdate)
	protect("DELETE "+root+"/{table}/{id}", api.handleCollectionDelete)
}

func (api *AdminAPI) table(w http.ResponseWriter, r *http.Request) (collections.Table, bool) {
	if api.collections == nil {
		unavailable(w)
		return nil, false
	}
	tbl, err := api.collections.Store().Table(r.PathValue("table"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return tbl, true
}

func (api *AdminAPI) handleCollectionTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, collections.Tables)
}

// handleCollectionList accepts ?order_by=, ?desc=true and ?limit=.
func (api *AdminAPI) handleCollectionList(w http.ResponseWriter, r *http.Request) {
	tbl, ok := api.table(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	opts := collections.ListOptions{
		OrderBy: strings.TrimSpace(query.Get("order_by")),
	}
	if desc, err := strconv.ParseBool(query.Get("desc")); err == nil {
		opts.Descending = desc
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}
	records, err := tbl.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *AdminAPI) handleCollectionCreate(w http.ResponseWriter, r *http.Request) {
	tbl, ok := api.table(w, r)
	if !ok {
		return
	}
	raw, err := readBody(w, r)
	if err != nil || !json.Valid(raw) {
		badRequest(w, "invalid json payload")
		return
	}
	record, err := tbl.Insert(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *AdminAPI) handleCollectionUpdate(w http.ResponseWriter, r *http.Request) {
	tbl, ok := api.table(w, r)
	if !ok {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var patch map[string]any
	if err := decodeJSON(w, r, &patch); err != nil {
		badRequest(w, "invalid json payload")
		return
	}
	if len(patch) == 0 {
		badRequest(w, "patch is empty")
		return
	}
	record, err := tbl.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handleCollectionDelete(w http.ResponseWriter, r *http.Request) {
	tbl, ok := api.table(w, r)
	if !ok {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := tbl.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
