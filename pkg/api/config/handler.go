package config

import (
	"encoding/json"
	"net/http"

	"secrawler/pkg/core/agent"
	coreConfig "secrawler/pkg/core/config"
)

type Response struct {
	Request   coreConfig.RequestConfig `json:"request"`
	Provider  string                   `json:"provider"`
	Available []string                 `json:"available"`
}

// Handler exposes the read-only generation config.
type Handler struct {
	AgentMgr *agent.Manager
	Request  coreConfig.RequestConfig
}

func NewHandler(agentMgr *agent.Manager, rc coreConfig.RequestConfig) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
		Request:  rc,
	}
}

// HandleConfig handles GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := Response{
		Request:   h.Request,
		Provider:  h.Request.Provider(),
		Available: h.AgentMgr.Available(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
