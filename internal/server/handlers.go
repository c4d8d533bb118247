package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/agent"
	"github.com/adpulse/adpulse/internal/modules"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// moduleInfo is the listing shape: identity plus the tunable surface.
// Severity is present only for modules that describe their thresholds.
type moduleInfo struct {
	modules.Metadata
	Config   modules.Config                  `json:"config"`
	Severity map[string]modules.SeveritySpec `json:"severity,omitempty"`
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	reg := s.svc.Registry()
	category := r.URL.Query().Get("category")

	var mods []modules.Module
	if category == "" {
		mods = reg.All()
	} else {
		mods = reg.ByCategory(category)
	}

	infos := make([]moduleInfo, 0, len(mods))
	for _, m := range mods {
		info := moduleInfo{Metadata: m.Metadata(), Config: m.DefaultConfig()}
		if sd, ok := m.(modules.SeverityDescriber); ok {
			info.Severity = sd.SeverityMetadata()
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"modules":    infos,
		"categories": reg.Categories(),
	})
}

type runRequest struct {
	Params map[string]any `json:"params"`
}

func (s *Server) handleRunModule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req runRequest
	if r.Body != nil {
		// An empty body means "run with defaults".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	res, err := s.svc.Run(r.Context(), id, req.Params)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	// Execution failures are data, not HTTP errors: the Result carries its
	// own status so UI and agent treat all outcomes uniformly.
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = modules.CategoryUniversal
	}
	data, err := agent.MarshalDescriptors(s.catalog.Tools(category))
	if err != nil {
		s.log.Error("marshal tool catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build tool catalog")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type askRequest struct {
	Question string        `json:"question"`
	Category string        `json:"category,omitempty"`
	History  []chatMessage `json:"history,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type askResponse struct {
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	category := req.Category
	if category == "" {
		category = modules.CategoryUniversal
	}

	history := make([]*schema.Message, 0, len(req.History))
	for _, m := range req.History {
		switch m.Role {
		case "assistant":
			history = append(history, schema.AssistantMessage(m.Content, nil))
		default:
			history = append(history, schema.UserMessage(m.Content))
		}
	}

	answer, err := s.orch.Ask(r.Context(), category, history, req.Question)
	if err != nil {
		// The orchestrator already produced a presentable apology; the
		// underlying cause stays in the log.
		s.log.Warn("agent turn failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Category: category})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
