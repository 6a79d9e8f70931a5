// Package previewserver serves the live preview and a small control panel over HTTP.
//
// A Hub is the ports.Display handed to the capture loop: it keeps the latest
// frame as JPEG for /preview.jpg, the MJPEG /stream and websocket subscribers
// on /ws. The /api routes drive a session controller.
package previewserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/user/duocam/pkg/adapters/devicelist"
	"github.com/user/duocam/pkg/ports"
	"github.com/user/duocam/pkg/session"
)

const (
	shutdownTimeout = 10 * time.Second
	writeTimeout    = 5 * time.Second
)

// Controller is the part of session.Controller the panel drives.
type Controller interface {
	Start(ctx context.Context, devices []ports.Device) error
	Preview(ctx context.Context, devices []ports.Device) error
	Record(ctx context.Context) error
	StopRecording(ctx context.Context) (session.Result, error)
	Stop(ctx context.Context) (session.Result, error)
	Status() session.Status
}

var _ Controller = (*session.Controller)(nil)

// Options configures a Server.
type Options struct {
	// Cameras are the selections used when a request names no devices.
	Cameras []string
	// OnResult is called after every finished recording.
	OnResult func(session.Result)
}

// Server is the HTTP control panel.
type Server struct {
	ctrl     Controller
	lister   ports.DeviceLister
	hub      *Hub
	log      ports.Logger
	opts     Options
	router   chi.Router
	upgrader websocket.Upgrader
}

// New creates a Server streaming the frames shown on hub.
// lister is used for /api/devices and to resolve selections.
func New(ctrl Controller, lister ports.DeviceLister, hub *Hub, log ports.Logger, opts Options) *Server {
	s := &Server{
		ctrl:   ctrl,
		lister: lister,
		hub:    hub,
		log:    log.WithComponent("server"),
		opts:   opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/preview.jpg", s.handlePreview)
	r.Get("/stream", s.handleStream)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/devices", s.handleDevices)
		r.Get("/status", s.handleStatus)
		r.Post("/start", s.handleStart)
		r.Post("/preview", s.handlePreviewCommand)
		r.Post("/record", s.handleRecord)
		r.Post("/stop-recording", s.handleStopRecording)
		r.Post("/stop", s.handleStop)
	})

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Control panel listening on http://%s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

// --- Request/Response types ---

// SelectRequest names the devices to open.
type SelectRequest struct {
	Devices []string `json:"devices"`
}

// DevicesResponse lists enumerated cameras.
type DevicesResponse struct {
	Devices []ports.Device `json:"devices"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.log.Debug("HTTP error: %d - %s", status, message)
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// commandError maps controller errors to status codes.
func (s *Server) commandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidState):
		s.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoCameras):
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, devicelist.ErrDeviceNotFound):
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}
