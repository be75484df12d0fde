package http

import (
	"encoding/json"
	"net/http"

	"github.com/tapdev/tapdev-site/internal/commands/injectioncmd"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/validation"
)

type injectionResponse struct {
	Draft     injection.Configuration `json:"draft"`
	Persisted injection.Configuration `json:"persisted"`
}

func (api *AdminAPI) registerInjectionRoutes(protect func(string, http.HandlerFunc), base string) {
	root := joinPath(base, "injection")
	protect("GET "+root, api.handleInjectionGet)
	protect("PUT "+root, api.handleInjectionPut)
	protect("POST "+root+"/save", api.handleInjectionSave)
}

func (api *AdminAPI) handleInjectionGet(w http.ResponseWriter, r *http.Request) {
	if api.injection == nil {
		unavailable(w)
		return
	}
	persisted, err := api.injection.Persisted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, injectionResponse{Draft: api.injection.Current(), Persisted: persisted})
}

// handleInjectionPut replaces the draft and re-applies it to attached
// documents. The draft is only stored by /injection/save.
func (api *AdminAPI) handleInjectionPut(w http.ResponseWriter, r *http.Request) {
	if api.injectionCmds == nil {
		unavailable(w)
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		badRequest(w, "unable to read request body")
		return
	}
	if err := validation.ValidateJSON(validation.SchemaInjection, raw); err != nil {
		writeError(w, err)
		return
	}
	var cfg injection.Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		badRequest(w, "invalid json payload")
		return
	}
	if err := api.injectionCmds.UpdateDraft.Execute(r.Context(), injectioncmd.UpdateDraftCommand{Config: cfg}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.injection.Current())
}

func (api *AdminAPI) handleInjectionSave(w http.ResponseWriter, r *http.Request) {
	if api.injectionCmds == nil {
		unavailable(w)
		return
	}
	if err := api.injectionCmds.Save.Execute(r.Context(), injectioncmd.SaveCommand{}); err != nil {
		writeError(w, err)
		return
	}
	persisted, err := api.injection.Persisted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, persisted)
}
