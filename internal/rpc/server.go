package rpc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/openscenario-sim/oscsim/sim"
)

// Server is the C7 transport: a single templated mux route /rpc/{method}
// that dispatches by method name (§6), plus a /telemetry/ws websocket broadcasting
// per-tick Snapshots, grounded in niceyeti-tabular's server.go
// (ListenAndServe + an upgrader-backed push loop).
type Server struct {
	loop       *sim.Loop
	dispatcher *Dispatcher
	router     *mux.Router
	upgrader   websocket.Upgrader
}

// NewServer builds a Server routing the RPC surface and telemetry
// websocket against loop.
func NewServer(loop *sim.Loop) *Server {
	s := &Server{
		loop:       loop,
		dispatcher: NewDispatcher(loop),
		router:     mux.NewRouter(),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	s.router.HandleFunc("/rpc/{method}", s.handleRPC).Methods(http.MethodPost)
	s.router.HandleFunc("/telemetry/ws", s.handleTelemetry)
	return s
}

// ListenAndServe blocks serving the RPC and telemetry surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("rpc server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	method := mux.Vars(r)["method"]

	var p Params
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, &Error{Message: "malformed request body: " + err.Error()})
			return
		}
	}
	if p == nil {
		p = Params{}
	}

	result, rpcErr, known := s.dispatcher.Call(method, p)
	if !known {
		writeJSON(w, http.StatusNotFound, &Error{Message: "unknown method: " + method})
		return
	}
	if rpcErr != nil {
		writeJSON(w, http.StatusOK, rpcErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeWait bounds how long a single telemetry frame write may block,
// mirroring niceyeti-tabular's server.go websocket write deadline.
const writeWait = time.Second

// handleTelemetry upgrades to a websocket and streams a Snapshot after
// every tick until the client disconnects (§4.7 step 4, §12).
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("telemetry upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.loop.Subscribe()
	defer unsubscribe()

	for snap := range updates {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snap); err != nil {
			log.Debugf("telemetry client disconnected: %v", err)
			return
		}
	}
}
