package webhooks

import (
	"encoding/json"
	"io"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-repowatch/core"
)

// maxBodyBytes caps inbound payloads; provider webhook bodies are far below
// this in practice.
const maxBodyBytes = 10 << 20

type response struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Pushed *int   `json:"pushed,omitempty"`
}

// Handler fronts the pipeline with an HTTP endpoint. Internal failures are
// logged with detail but surfaced to the caller only as a generic 500.
type Handler struct {
	Pipeline *Pipeline
	Logger   core.Logger
}

func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{
		Pipeline: pipeline,
		Logger:   glog.Nop(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Pipeline == nil {
		writeJSON(w, http.StatusInternalServerError, response{
			Status: StatusError,
			Reason: ReasonInternal,
		})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{
			Status: StatusError,
			Reason: "method not allowed",
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Status: StatusError,
			Reason: ReasonInvalidPayload,
		})
		return
	}

	headers := make(map[string]string, len(r.Header))
	for key := range r.Header {
		headers[key] = r.Header.Get(key)
	}

	outcome, err := h.Pipeline.Process(r.Context(), Request{Headers: headers, Body: body})
	if err != nil {
		h.logger().Error("pipeline execution failed", "error", err.Error())
	}

	resp := response{Status: outcome.Status, Reason: outcome.Reason}
	if outcome.Status == StatusOK {
		pushed := outcome.Pushed
		resp.Pushed = &pushed
	}
	writeJSON(w, outcome.HTTPStatus, resp)
}

func (h *Handler) logger() core.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return glog.Nop()
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
