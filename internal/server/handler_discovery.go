package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "seqqc viewer",
		Version:     "v1",
		Description: "Quality-control report viewer and invocation history",
		Endpoints: []endpointInfo{
			{"/", []string{"GET"}, "The visualization being served"},
			{"/api/v1/actions", []string{"GET"}, "Registered quality-control actions"},
			{"/api/v1/invocations", []string{"GET"}, "Invocation history, newest first. Accepts limit, offset and action"},
			{"/api/v1/invocations/{id}", []string{"GET"}, "Single invocation record"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
