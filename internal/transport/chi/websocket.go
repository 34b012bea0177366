package chi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/domain"
	domchat "github.com/cityhealth/directory/internal/domain/chat"
)

const (
	wsReadLimit = 8 << 10
	wsIdleWait  = 2 * time.Minute
	wsWriteWait = 10 * time.Second
)

// ChatWebSocket handles GET /api/v1/chat/ws. Each text frame carries one
// chat request as JSON and is answered with one reply frame.
func (s *Server) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	log := s.requestLogger(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(wsReadLimit)
	ctx := r.Context()
	device := domain.DeviceFromContext(ctx)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleWait))
		var req domchat.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read failed", zap.String("device", device), zap.Error(err))
			}
			return
		}

		var out any
		if err := req.Validate(); err != nil {
			out = ErrorResponse{Code: CodeValidationFailed, Message: err.Error()}
		} else {
			out = s.chat.Reply(ctx, req)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			log.Warn("WebSocket write failed", zap.String("device", device), zap.Error(err))
			return
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	_, ok := s.allowedOrigins[r.Header.Get("Origin")]
	return ok
}
