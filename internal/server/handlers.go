package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"genforge/internal/coordinator"
	"genforge/internal/event"
	"genforge/internal/plan"
	"genforge/internal/runstore"
)

// Handler exposes the generation pipeline over HTTP. The base coordinator
// is copied per request so each run gets its own emitter.
type Handler struct {
	Base      *coordinator.Coordinator
	Runs      runstore.Store
	Artifacts runstore.ArtifactStore
	Logger    *zap.Logger

	upgrader websocket.Upgrader
}

func NewHandler(base *coordinator.Coordinator, runs runstore.Store, artifacts runstore.ArtifactStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Base:      base,
		Runs:      runs,
		Artifacts: artifacts,
		Logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Routes mounts the API on a mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /v1/generate", h.handleGenerate)
	mux.HandleFunc("GET /v1/generate/ws", h.handleGenerateWS)
	mux.HandleFunc("GET /v1/runs", h.handleListRuns)
	mux.HandleFunc("GET /v1/runs/{id}", h.handleGetRun)
	mux.HandleFunc("GET /v1/runs/{id}/artifacts", h.handleListArtifacts)
	mux.HandleFunc("GET /v1/runs/{id}/artifacts/{path...}", h.handleGetArtifact)
	return mux
}

// generateRequest is the wire form of one generation request. Templates
// extend the server's configured per-extension prompt templates for this
// run only.
type generateRequest struct {
	Plan        plan.GenerationPlan `json:"plan"`
	Retrieval   string              `json:"retrieval,omitempty"`
	Existing    map[string]string   `json:"existing_files,omitempty"`
	ProjectRoot string              `json:"project_root,omitempty"`
	Templates   map[string]string   `json:"templates,omitempty"`
}

type generateResponse struct {
	RunID string            `json:"run_id"`
	Files map[string]string `json:"files"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Plan.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, files, err := h.execute(r, req, event.NewZap(h.Logger, "run"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{RunID: runID, Files: files})
}

// handleGenerateWS streams run events over a websocket. The client sends
// one generateRequest frame; the server answers with event frames and a
// final complete event carrying the run ID in the message field.
func (h *Handler) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req generateRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(event.Event{Type: event.TypeError, Severity: event.SeverityError,
			Message: "invalid request frame: " + err.Error()})
		return
	}
	if err := req.Plan.Validate(); err != nil {
		_ = conn.WriteJSON(event.Event{Type: event.TypeError, Severity: event.SeverityError,
			Message: err.Error()})
		return
	}

	emitter := event.Multi{
		event.NewWebsocket(conn, "run"),
		event.NewZap(h.Logger, "run"),
	}
	runID, files, err := h.execute(r, req, emitter)
	if err != nil {
		_ = conn.WriteJSON(event.Event{Type: event.TypeError, Severity: event.SeverityError,
			Message: err.Error()})
		return
	}
	_ = conn.WriteJSON(event.Event{
		Type:      event.TypeComplete,
		Severity:  event.SeveritySuccess,
		Message:   runID,
		Completed: len(files),
		Total:     len(files),
	})
}

// execute runs one generation and persists the run record and artifacts.
func (h *Handler) execute(r *http.Request, req generateRequest, emitter event.Emitter) (string, map[string]string, error) {
	ctx := r.Context()
	runID := runstore.NewRunID()
	now := time.Now().UTC()
	run := runstore.Run{
		ID:        runID,
		Status:    runstore.RunRunning,
		Plan:      req.Plan,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.saveRun(ctx, run)

	c := *h.Base
	c.Emitter = emitter
	if len(req.Templates) > 0 {
		merged := make(map[string]string, len(h.Base.Templates)+len(req.Templates))
		for ext, tmpl := range h.Base.Templates {
			merged[ext] = tmpl
		}
		for ext, tmpl := range req.Templates {
			merged[ext] = tmpl
		}
		c.Templates = merged
	}
	files, err := c.Generate(ctx, coordinator.Request{
		Plan:        req.Plan,
		Retrieval:   req.Retrieval,
		Existing:    req.Existing,
		ProjectRoot: req.ProjectRoot,
	})
	run.UpdatedAt = time.Now().UTC()
	if err != nil {
		run.Status = runstore.RunFailed
		run.Error = err.Error()
		h.saveRun(ctx, run)
		return runID, nil, err
	}
	run.Status = runstore.RunCompleted
	h.saveRun(ctx, run)

	if h.Artifacts != nil {
		for name, content := range files {
			if putErr := h.Artifacts.Put(ctx, runID, name, []byte(content)); putErr != nil {
				h.Logger.Warn("failed to persist artifact",
					zap.String("run_id", runID), zap.String("path", name), zap.Error(putErr))
			}
		}
	}
	return runID, files, nil
}

func (h *Handler) saveRun(ctx context.Context, run runstore.Run) {
	if h.Runs == nil {
		return
	}
	if err := h.Runs.Save(ctx, run); err != nil {
		h.Logger.Warn("failed to save run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeError(w, http.StatusNotImplemented, "run store not configured")
		return
	}
	runs, err := h.Runs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeError(w, http.StatusNotImplemented, "run store not configured")
		return
	}
	run, err := h.Runs.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	if h.Artifacts == nil {
		writeError(w, http.StatusNotImplemented, "artifact store not configured")
		return
	}
	paths, err := h.Artifacts.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

func (h *Handler) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if h.Artifacts == nil {
		writeError(w, http.StatusNotImplemented, "artifact store not configured")
		return
	}
	content, err := h.Artifacts.Get(r.Context(), r.PathValue("id"), r.PathValue("path"))
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
