package server

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"

	"keyrelay/logging"
	"keyrelay/protocol"
)

const maxBodyBytes = 64 << 10

// Server 玩家状态服务的 HTTP 接入层
type Server struct {
	world *World
}

func NewServer(world *World) *Server {
	return &Server{world: world}
}

// Routes 注册全部接口
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.HandleJoin)
	mux.HandleFunc("OPTIONS /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /player/{id}", s.HandleState)
	mux.HandleFunc("POST /player/{id}", s.HandleCommands)
	mux.HandleFunc("GET /player/{id}/ws", s.HandleWatch)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("GET /metrics", s.HandleMetrics)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// HandleJoin 生成新玩家并跳转到其地址
func (s *Server) HandleJoin(w http.ResponseWriter, r *http.Request) {
	p := s.world.Spawn()
	w.Header().Set("Location", "/player/"+string(p.ID))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusFound)
}

// HandleState 返回玩家当前状态
func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	p, ok := s.world.Lookup(PlayerID(r.PathValue("id")))
	if !ok {
		http.Error(w, "unknown player", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(p.State())
}

// HandleCommands 解析命令批次并投递到下一次 Tick
func (s *Server) HandleCommands(w http.ResponseWriter, r *http.Request) {
	id := PlayerID(r.PathValue("id"))
	if _, ok := s.world.Lookup(id); !ok {
		http.Error(w, "unknown player", http.StatusNotFound)
		return
	}

	var env protocol.Envelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&env); err != nil {
		s.world.metrics.IncRejected()
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ops, err := DecodeOps(env)
	if err != nil {
		s.world.metrics.IncRejected()
		logging.Log.Debugf("rejected input: player=%s err=%v", id, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.world.mu.Lock()
	drop := s.world.simulateDropProb
	s.world.mu.Unlock()
	if drop > 0 && rand.Float64() < drop {
		s.world.metrics.IncDropsSimulated()
		http.Error(w, "dropped", http.StatusServiceUnavailable)
		return
	}

	if !s.world.OnInput(Input{PlayerID: id, Ops: ops}) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
