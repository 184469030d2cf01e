package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/devskill-org/nightvision/utils"
	"github.com/gorilla/websocket"
)

// Version is reported by the status endpoints
const Version = "1.0.0"

// WebServer provides HTTP endpoints for health checking, status, metrics and
// a WebSocket feed of poll iterations
type WebServer struct {
	scheduler *NightVisionScheduler
	server    *http.Server
	port      int
	startTime time.Time
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version,omitempty"`
	Scheduler SchedulerHealth `json:"scheduler"`
	System    SystemHealth    `json:"system"`
}

// SchedulerHealth represents scheduler-specific health information
type SchedulerHealth struct {
	IsRunning     bool       `json:"is_running"`
	NightVision   *bool      `json:"night_vision,omitempty"`
	LastCommandAt *time.Time `json:"last_command_at,omitempty"`
	CommandsSent  uint64     `json:"commands_sent"`
	PollInterval  string     `json:"poll_interval"`
	CameraDriver  string     `json:"camera_driver"`
}

// SystemHealth represents system-level health information
type SystemHealth struct {
	Uptime string `json:"uptime"`
}

// NewWebServer creates a new web server. A port <= 0 disables it (nil).
func NewWebServer(scheduler *NightVisionScheduler, port int) *WebServer {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	hs := &WebServer{
		scheduler: scheduler,
		port:      port,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	hs.upgrader.CheckOrigin = hs.checkOrigin

	mux.HandleFunc("/api/health", hs.healthHandler)
	mux.HandleFunc("/api/ready", hs.readinessHandler)
	mux.HandleFunc("/api/status", hs.statusHandler)
	mux.HandleFunc("/api/ws", hs.wsHandler)
	mux.Handle("/metrics", scheduler.metrics.Handler())

	return hs
}

// Start starts the web server
func (hs *WebServer) Start() error {
	if hs == nil {
		return nil
	}

	go hs.handleBroadcasts()

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't crash the main application
			hs.scheduler.logger.Printf("Status server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the web server
func (hs *WebServer) Stop(ctx context.Context) error {
	if hs == nil {
		return nil
	}

	hs.closeOnce.Do(func() { close(hs.done) })

	// Close all WebSocket connections
	hs.clients.Range(func(key, value any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})

	return hs.server.Shutdown(ctx)
}

// Publish queues the current status for all WebSocket clients. It never blocks
// the poll loop; a full queue drops the update.
func (hs *WebServer) Publish() {
	if hs == nil || !hs.hasClients() {
		return
	}

	message, err := json.Marshal(hs.buildStatusData())
	if err != nil {
		hs.scheduler.logger.Printf("Failed to marshal status data: %v", err)
		return
	}

	select {
	case hs.broadcast <- message:
	default:
		hs.scheduler.logger.Printf("Status broadcast queue full, dropping update")
	}
}

// checkOrigin accepts clients without an Origin header, same-origin pages and
// the origins listed in status_allowed_origins
func (hs *WebServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}

	for _, allowed := range hs.scheduler.config.StatusAllowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

// healthHandler handles the /api/health endpoint
func (hs *WebServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := hs.buildHealth()

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(health); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// readinessHandler handles the /api/ready endpoint. Ready means at least one
// command reached the camera.
func (hs *WebServer) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := hs.scheduler.GetStatus()
	isReady := status.IsRunning && status.CommandsSent > 0

	ready := map[string]any{
		"ready":     isReady,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")

	if !isReady {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if err := json.NewEncoder(w).Encode(ready); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusHandler handles the /api/status endpoint (detailed status)
func (hs *WebServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"scheduler_status": hs.scheduler.GetStatus(),
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// wsHandler handles WebSocket connections
func (hs *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := hs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hs.scheduler.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// Send initial data before the client joins the broadcast set
	hs.sendStatusToClient(conn)

	hs.clients.Store(conn, true)
	hs.scheduler.logger.Printf("New WebSocket client connected. Total clients: %d", hs.clientCount())

	defer func() {
		hs.clients.Delete(conn)
		conn.Close()
		hs.scheduler.logger.Printf("WebSocket client disconnected. Total clients: %d", hs.clientCount())
	}()

	// Read messages from client (ping/pong, close)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hs.scheduler.logger.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// handleBroadcasts sends messages to all connected clients
func (hs *WebServer) handleBroadcasts() {
	for {
		select {
		case message := <-hs.broadcast:
			hs.clients.Range(func(key, value any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}

				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					hs.scheduler.logger.Printf("WebSocket write error: %v", err)
					conn.Close()
					hs.clients.Delete(conn)
				}
				return true
			})
		case <-hs.done:
			return
		}
	}
}

// sendStatusToClient sends status data to a specific client
func (hs *WebServer) sendStatusToClient(conn *websocket.Conn) {
	if err := conn.WriteJSON(hs.buildStatusData()); err != nil {
		hs.scheduler.logger.Printf("Failed to send initial data: %v", err)
	}
}

func (hs *WebServer) hasClients() bool {
	found := false
	hs.clients.Range(func(key, value any) bool {
		found = true
		return false
	})
	return found
}

func (hs *WebServer) clientCount() int {
	count := 0
	hs.clients.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

func (hs *WebServer) buildHealth() HealthResponse {
	status := hs.scheduler.GetStatus()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
		Scheduler: SchedulerHealth{
			IsRunning:     status.IsRunning,
			NightVision:   status.NightVision,
			LastCommandAt: status.LastCommandAt,
			CommandsSent:  status.CommandsSent,
			PollInterval:  status.PollInterval,
			CameraDriver:  status.CameraDriver,
		},
		System: SystemHealth{
			Uptime: utils.FormatDuration(time.Since(hs.startTime)),
		},
	}

	if !status.IsRunning {
		health.Status = "unhealthy"
	}
	return health
}

// buildStatusData builds combined health and status data
func (hs *WebServer) buildStatusData() map[string]any {
	return map[string]any{
		"type":   "status_update",
		"health": hs.buildHealth(),
		"status": hs.scheduler.GetStatus(),
	}
}
