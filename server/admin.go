package server

import (
	"encoding/json"
	"net/http"

	"keyrelay/logging"
)

// HandleAdminConfig 提供世界配置的读取与更新（热更新基本规则）
// GET /admin/config   返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		Step             *float64 `json:"step,omitempty"`
		MaxVelocity      *float64 `json:"maxVelocity,omitempty"`
		SimulateDropProb *float64 `json:"simulateDropProb,omitempty"`
	}
	world := s.world

	switch r.Method {
	case http.MethodGet:
		world.mu.Lock()
		step, maxV, drop := world.step, world.maxVelocity, world.simulateDropProb
		world.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg{Step: &step, MaxVelocity: &maxV, SimulateDropProb: &drop})
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.SimulateDropProb != nil && (*body.SimulateDropProb < 0 || *body.SimulateDropProb > 1) {
			http.Error(w, "simulateDropProb must be within [0,1]", http.StatusBadRequest)
			return
		}
		world.mu.Lock()
		if body.Step != nil {
			world.step = *body.Step
		}
		if body.MaxVelocity != nil {
			world.maxVelocity = *body.MaxVelocity
		}
		if body.SimulateDropProb != nil {
			world.simulateDropProb = *body.SimulateDropProb
		}
		step, maxV, drop := world.step, world.maxVelocity, world.simulateDropProb
		world.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		logging.Log.Infof("config updated: step=%.2f maxVelocity=%.2f drop=%.2f", step, maxV, drop)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出世界运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	s.world.mu.Lock()
	tick, players := s.world.tickSeq, len(s.world.Players)
	s.world.mu.Unlock()
	payload := map[string]any{
		"tick":    tick,
		"players": players,
		"metrics": s.world.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
