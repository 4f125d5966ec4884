package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/seqqc/internal/qc"
	"github.com/me/seqqc/pkg/model"
)

func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())

	opts, fieldErrs := parseListOptions(r)
	if len(fieldErrs) > 0 {
		respondError(w, reqID, model.NewValidationError("Invalid query", fieldErrs...))
		return
	}
	opts.Clamp()

	if s.store == nil {
		respondList(w, reqID, []*model.Invocation{}, opts.Page(0, 0))
		return
	}

	invs, total, err := s.store.ListInvocations(r.Context(), opts)
	if err != nil {
		s.logger.Error("list invocations", "error", err)
		respondError(w, reqID, model.NewInternalError("list invocations"))
		return
	}
	respondList(w, reqID, invs, opts.Page(len(invs), total))
}

func (s *Server) handleGetInvocation(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())
	id := chi.URLParam(r, "id")

	if s.store == nil {
		respondError(w, reqID, model.NewHistoryUnavailableError())
		return
	}

	inv, err := s.store.GetInvocation(r.Context(), id)
	if err != nil {
		s.logger.Error("get invocation", "id", id, "error", err)
		respondError(w, reqID, model.NewInternalError("get invocation"))
		return
	}
	if inv == nil {
		respondError(w, reqID, model.NewNotFoundError("Invocation", id))
		return
	}
	respondOK(w, reqID, inv)
}

func parseListOptions(r *http.Request) (model.ListOptions, []model.FieldError) {
	opts := model.DefaultListOptions()
	var errs []model.FieldError
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "limit", Message: "expected int"})
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, model.FieldError{Field: "offset", Message: "expected int"})
		}
		opts.Offset = n
	}
	opts.Action = q.Get("action")
	return opts, errs
}

type actionResponse struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Citation    string `json:"citation"`
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFrom(r.Context())

	data := []actionResponse{}
	if s.registry != nil {
		for _, a := range s.registry.List() {
			data = append(data, toActionResponse(a))
		}
	}
	respondOK(w, reqID, data)
}

func toActionResponse(a qc.Action) actionResponse {
	return actionResponse{Name: a.Name, Title: a.Title, Description: a.Description, Citation: a.Citation}
}
