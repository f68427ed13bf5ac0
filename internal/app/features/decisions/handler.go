// internal/app/features/decisions/handler.go
package decisions

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/policy/engine"
	"github.com/dalemusser/classhub/internal/app/policy/rules"
	decisionstore "github.com/dalemusser/classhub/internal/app/store/decisions"
	"github.com/dalemusser/classhub/internal/app/store/snapshot"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/limits"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
)

// maxBatch caps how many requests one batch call may carry. All of them
// share one snapshot view, so oversized batches hold the view open too long.
const maxBatch = 100

// Handler evaluates access decision requests.
type Handler struct {
	Engine *engine.Engine
	Source snapshot.Source
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a decisions Handler.
func NewHandler(eng *engine.Engine, source snapshot.Source, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine: eng,
		Source: source,
		Audit:  audit,
		Log:    logger,
	}
}

// decideRequest is the wire form of one decision request.
type decideRequest struct {
	Operation string         `json:"operation"`
	Actor     string         `json:"actor"`
	Path      string         `json:"path"`
	Resource  map[string]any `json:"resource,omitempty"`
	Proposed  map[string]any `json:"proposed,omitempty"`
}

type batchRequest struct {
	Requests []decideRequest `json:"requests"`
}

type batchResponse struct {
	Decisions []engine.Decision `json:"decisions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// toEngineRequest validates the wire request. It returns a human-readable
// problem string for caller mistakes; evaluation itself never errors.
func toEngineRequest(req decideRequest) (engine.Request, string) {
	op, err := rules.ParseOperation(req.Operation)
	if err != nil {
		return engine.Request{}, "unknown operation: " + req.Operation
	}
	if req.Path == "" {
		return engine.Request{}, "path is required"
	}
	return engine.Request{
		Operation: op,
		Actor:     req.Actor,
		Path:      req.Path,
		Resource:  rules.Document(req.Resource),
		Proposed:  rules.Document(req.Proposed),
	}, ""
}

// ServeDecide handles POST /v1/decisions.
//
// On success: 200 and { "allowed": bool, "rule": "...", "ruleset": "..." }.
// Malformed bodies and unknown operations are caller errors (400); a
// malformed document path is not — it evaluates to a deny.
func (h *Handler) ServeDecide(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxDecideBodySize)

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	engReq, problem := toEngineRequest(req)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: problem})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap, release, err := h.Source.View(ctx)
	if err != nil {
		h.Log.Error("decision: snapshot view failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "document mirror unavailable"})
		return
	}
	defer release()

	decision := h.Engine.Decide(ctx, snap, engReq)

	h.Audit.Record(ctx, decisionstore.Record{
		Actor:     engReq.Actor,
		Operation: string(engReq.Operation),
		Path:      engReq.Path,
		Allowed:   decision.Allowed,
		Rule:      decision.Rule,
		Ruleset:   decision.Ruleset,
		Source:    decisionstore.SourceAPI,
		IP:        auditlog.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, decision)
}

// ServeDecideBatch handles POST /v1/decisions/batch.
//
// Every request in the batch is evaluated against the same snapshot view,
// so the batch observes one consistent state of the mirror.
func (h *Handler) ServeDecideBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBatchBodySize)

	var batch batchRequest
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if len(batch.Requests) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "requests is empty"})
		return
	}
	if len(batch.Requests) > maxBatch {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "too many requests in one batch"})
		return
	}

	engReqs := make([]engine.Request, len(batch.Requests))
	for i, req := range batch.Requests {
		engReq, problem := toEngineRequest(req)
		if problem != "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: problem})
			return
		}
		engReqs[i] = engReq
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	snap, release, err := h.Source.View(ctx)
	if err != nil {
		h.Log.Error("decision batch: snapshot view failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "document mirror unavailable"})
		return
	}
	defer release()

	ip := auditlog.ClientIP(r)
	out := batchResponse{Decisions: make([]engine.Decision, len(engReqs))}
	for i, engReq := range engReqs {
		decision := h.Engine.Decide(ctx, snap, engReq)
		out.Decisions[i] = decision

		h.Audit.Record(ctx, decisionstore.Record{
			Actor:     engReq.Actor,
			Operation: string(engReq.Operation),
			Path:      engReq.Path,
			Allowed:   decision.Allowed,
			Rule:      decision.Rule,
			Ruleset:   decision.Ruleset,
			Source:    decisionstore.SourceAPI,
			IP:        ip,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
