package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is handled by the CORS configuration of the
		// surrounding deployment; the endpoint itself accepts any origin.
		return true
	},
}

// WebSocketOCRRequest is a document OCR request sent over a WebSocket. The
// document bytes travel base64-encoded in the JSON frame.
type WebSocketOCRRequest struct {
	Filename string `json:"filename"`
	Document []byte `json:"document"`
}

// WebSocketOCRResponse is a frame sent back to the client: per-page progress
// while processing, then a final completed or error frame.
type WebSocketOCRResponse struct {
	Type   string       `json:"type"`   // "progress" or "result"
	Status string       `json:"status"` // "processing", "completed", "error"
	Page   int          `json:"page,omitempty"`
	Total  int          `json:"total,omitempty"`
	Result *OCRResponse `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// ocrWebSocketHandler handles WebSocket connections for document OCR with
// live per-page progress.
func (s *Server) ocrWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType != websocket.TextMessage {
			continue
		}
		s.handleWebSocketRequest(conn, data)
	}
}

// wsWriter serializes concurrent frame writes to one connection.
type wsWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsWriter) send(resp WebSocketOCRResponse) {
	w.mu.Lock()
	defer w.mu.Unlock()
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}
	if err := w.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("Failed to write WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// wsProgress relays pipeline page progress to the client.
type wsProgress struct {
	w *wsWriter
}

func (p *wsProgress) OnStart(total int) {
	p.w.send(WebSocketOCRResponse{Type: "progress", Status: "processing", Page: 0, Total: total})
}

func (p *wsProgress) OnProgress(page, total int) {
	p.w.send(WebSocketOCRResponse{Type: "progress", Status: "processing", Page: page, Total: total})
}

func (p *wsProgress) OnComplete() {}

func (p *wsProgress) OnError(page int, err error) {}

func (s *Server) handleWebSocketRequest(conn *websocket.Conn, data []byte) {
	writer := &wsWriter{conn: conn}

	var req WebSocketOCRRequest
	if err := json.Unmarshal(data, &req); err != nil {
		writer.send(WebSocketOCRResponse{Type: "result", Status: "error", Error: "invalid request: " + err.Error()})
		return
	}
	if len(req.Document) == 0 || req.Filename == "" {
		writer.send(WebSocketOCRResponse{Type: "result", Status: "error", Error: "filename and document are required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	report, err := s.pipeline.ProcessWithProgress(ctx, req.Document, req.Filename, &wsProgress{w: writer})
	if err != nil {
		writer.send(WebSocketOCRResponse{Type: "result", Status: "error", Error: err.Error()})
		return
	}

	urls, err := s.store.SaveAll(report.Artifacts)
	if err != nil {
		writer.send(WebSocketOCRResponse{Type: "result", Status: "error", Error: err.Error()})
		return
	}

	highlighted := make([]HighlightedImage, len(report.Artifacts))
	for i, a := range report.Artifacts {
		highlighted[i] = HighlightedImage{Page: a.Page, URL: urls[i]}
	}
	writer.send(WebSocketOCRResponse{
		Type:   "result",
		Status: "completed",
		Result: &OCRResponse{
			Success:           true,
			TotalWords:        report.TotalWords,
			Results:           report.Words,
			HighlightedImages: highlighted,
		},
	})
}
