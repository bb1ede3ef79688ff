package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"

	"github.com/leapstack-labs/needscheck/internal/engine"
	"github.com/leapstack-labs/needscheck/internal/state"
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, format string, args ...any) {
	s.writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.engine.SchemaError() != nil {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"schema": s.engine.SchemaName(),
	})
}

// handleValidate runs one document through the pipeline. The verdict is in
// the body; the status is 200 whenever the document could be received.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	strict := false
	if v := r.URL.Query().Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid strict value %q", v)
			return
		}
		strict = b
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "document exceeds %d bytes", tooLarge.Limit)
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read body: %v", err)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "request"
	}

	res := s.engine.Validate(r.Context(), engine.Input{
		Source: source,
		Data:   data,
		Format: formatFor(r.Header.Get("Content-Type")),
		Strict: strict,
	})
	s.metrics.Observe(res)
	s.notifier.Broadcast(eventFor(res))

	s.writeJSON(w, http.StatusOK, res)
}

func formatFor(contentType string) needs.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return needs.FormatJSON
	}
	if strings.HasSuffix(mediaType, "yaml") {
		return needs.FormatYAML
	}
	return needs.FormatJSON
}

func eventFor(res *engine.Result) Event {
	return Event{
		RunID:    res.RunID,
		Source:   res.Source,
		Verdict:  res.Verdict,
		Failed:   res.Failed,
		Errors:   len(res.Errors),
		Warnings: len(res.Warnings),
	}
}

type rulesResponse struct {
	Rules []core.RuleInfo `json:"rules"`
	Count int             `json:"count"`
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	rules := s.engine.RuleInfo()
	s.writeJSON(w, http.StatusOK, rulesResponse{Rules: rules, Count: len(rules)})
}

// utc normalizes a run's timestamps for the wire.
func utc(run *state.Run) *state.Run {
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()
	return run
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit %q", v)
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	for _, run := range runs {
		utc(run)
	}
	if runs == nil {
		runs = []*state.Run{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, state.ErrRunNotFound) {
		s.writeError(w, http.StatusNotFound, "run %s not found", id)
		return
	}
	if err != nil {
		s.logger.Error("failed to get run", slog.String("id", id), slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	s.writeJSON(w, http.StatusOK, utc(run))
}

// handleEvents streams one server-sent event per finished validation.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := gojson.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: validation\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
