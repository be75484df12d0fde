package http

import (
	"encoding/json"
	"net/http"

	"github.com/tapdev/tapdev-site/internal/commands/seocmd"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/internal/validation"
)

type overrideResponse struct {
	Path     string            `json:"path"`
	Override seo.Configuration `json:"override"`
	Exists   bool              `json:"exists"`
}

func (api *AdminAPI) registerSEORoutes(protect func(string, http.HandlerFunc), base string) {
	root := joinPath(base, "seo")
	protect("GET "+root, api.handleSEOResolve)
	protect("GET "+root+"/override", api.handleSEOOverrideGet)
	protect("PUT "+root+"/override", api.handleSEOOverridePut)
	protect("DELETE "+root+"/override", api.handleSEOOverrideDelete)
	protect("GET "+root+"/overrides", api.handleSEOOverrides)
}

func (api *AdminAPI) handleSEOResolve(w http.ResponseWriter, r *http.Request) {
	if api.seo == nil {
		unavailable(w)
		return
	}
	path, ok := pathQuery(r)
	if !ok {
		badRequest(w, "path query parameter must start with /")
		return
	}
	writeJSON(w, http.StatusOK, api.seo.Resolve(r.Context(), path))
}

func (api *AdminAPI) handleSEOOverrideGet(w http.ResponseWriter, r *http.Request) {
	if api.seo == nil {
		unavailable(w)
		return
	}
	path, ok := pathQuery(r)
	if !ok {
		badRequest(w, "path query parameter must start with /")
		return
	}
	override, exists, err := api.seo.Override(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overrideResponse{Path: path, Override: override, Exists: exists})
}

func (api *AdminAPI) handleSEOOverridePut(w http.ResponseWriter, r *http.Request) {
	if api.seo == nil || api.seoCommands == nil {
		unavailable(w)
		return
	}
	path, ok := pathQuery(r)
	if !ok {
		badRequest(w, "path query parameter must start with /")
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		badRequest(w, "unable to read request body")
		return
	}
	if err := validation.ValidateJSON(validation.SchemaSEOOverride, raw); err != nil {
		writeError(w, err)
		return
	}
	var cfg seo.Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		badRequest(w, "invalid json payload")
		return
	}
	if err := api.seoCommands.Save.Execute(r.Context(), seocmd.SaveOverrideCommand{Path: path, Config: cfg}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.seo.Resolve(r.Context(), path))
}

func (api *AdminAPI) handleSEOOverrideDelete(w http.ResponseWriter, r *http.Request) {
	if api.seoCommands == nil {
		unavailable(w)
		return
	}
	path, ok := pathQuery(r)
	if !ok {
		badRequest(w, "path query parameter must start with /")
		return
	}
	if err := api.seoCommands.Delete.Execute(r.Context(), seocmd.DeleteOverrideCommand{Path: path}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleSEOOverrides(w http.ResponseWriter, r *http.Request) {
	if api.seo == nil {
		unavailable(w)
		return
	}
	paths, err := api.seo.Overrides(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, paths)
}
