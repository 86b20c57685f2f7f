/**
 * @description
 * HTTP handlers proxying the external administrative-geography API so the
 * front end only ever talks to this service.
 */

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListCountiesHandler proxies the county list from the reference API.
func (h *Handler) ListCountiesHandler(w http.ResponseWriter, r *http.Request) {
	if h.regions == nil {
		respondJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "regions API is not configured"})
		return
	}
	counties, err := h.regions.ListCounties(r.Context())
	if err != nil {
		respondJSON(w, http.StatusBadGateway, envelope{Success: false, Message: "regions API is unreachable"})
		return
	}
	respondList(w, http.StatusOK, counties, len(counties))
}

// GetCountyHandler proxies one county with its constituency/ward hierarchy.
func (h *Handler) GetCountyHandler(w http.ResponseWriter, r *http.Request) {
	if h.regions == nil {
		respondJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "regions API is not configured"})
		return
	}
	county, err := h.regions.GetCounty(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondJSON(w, http.StatusBadGateway, envelope{Success: false, Message: "regions API is unreachable"})
		return
	}
	respondData(w, http.StatusOK, county)
}
