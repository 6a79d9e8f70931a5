package previewserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/duocam/pkg/adapters/devicelist"
	"github.com/user/duocam/pkg/ports"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, indexHTML)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	frame, _ := s.hub.latest()
	if frame == nil {
		s.errorResponse(w, http.StatusNotFound, "no preview frame yet")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(frame)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	mw := multipart.NewWriter(w)
	mw.SetBoundary("frame")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "close")
	flusher, _ := w.(http.Flusher)

	for {
		frame, updated := s.hub.latest()
		if frame != nil {
			if err := writeJPEGPart(mw, frame); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		select {
		case <-updated:
		case <-r.Context().Done():
			return
		}
	}
}

func writeJPEGPart(mw *multipart.Writer, frame []byte) error {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", "image/jpeg")
	header.Set("Content-Length", fmt.Sprintf("%d", len(frame)))

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = part.Write(frame)
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reads are only needed to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		frame, updated := s.hub.latest()
		if frame != nil {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		}

		select {
		case <-updated:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := devicelist.List(r.Context(), s.lister, s.log)
	if devices == nil {
		devices = []ports.Device{}
	}
	s.jsonResponse(w, http.StatusOK, DevicesResponse{Devices: devices})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	devices, ok := s.selection(w, r)
	if !ok {
		return
	}
	if err := s.ctrl.Start(r.Context(), devices); err != nil {
		s.commandError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handlePreviewCommand(w http.ResponseWriter, r *http.Request) {
	devices, ok := s.selection(w, r)
	if !ok {
		return
	}
	if err := s.ctrl.Preview(r.Context(), devices); err != nil {
		s.commandError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Record(r.Context()); err != nil {
		s.commandError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.StopRecording(r.Context())
	if err != nil {
		s.commandError(w, err)
		return
	}
	if s.opts.OnResult != nil {
		s.opts.OnResult(result)
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.Stop(r.Context())
	if err != nil {
		s.commandError(w, err)
		return
	}
	if s.opts.OnResult != nil && len(result.Artifacts) > 0 {
		s.opts.OnResult(result)
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// selection decodes the optional request body and resolves it against the
// enumerated devices. An empty body selects the configured cameras.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) ([]ports.Device, bool) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.Devices) == 0 {
		req.Devices = s.opts.Cameras
	}

	devices, err := devicelist.Resolve(devicelist.List(r.Context(), s.lister, s.log), req.Devices)
	if err != nil {
		s.commandError(w, err)
		return nil, false
	}
	return devices, true
}
