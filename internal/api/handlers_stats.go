package api

import (
	"encoding/json"
	"net/http"
)

type ruleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	ruleset := s.linter.Rules()
	out := make([]ruleInfo, 0, len(ruleset))
	for _, rule := range ruleset {
		out = append(out, ruleInfo{Name: rule.Name(), Description: rule.Description()})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"rules": out})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"window": s.linter.StatsWindow().String(),
		"stats":  s.linter.Stats(),
	})
}
