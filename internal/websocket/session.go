package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "olistdash/internal/errors"
	"olistdash/internal/services"
	api "olistdash/pkg/contracts/api/v1"
	"olistdash/pkg/contracts/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Responses waiting for the writer
	sendBuffer = 16
)

// Session is one WebSocket connection answering query requests in order
type Session struct {
	id      string
	conn    *websocket.Conn
	handler *Handler
	request *http.Request
	send    chan api.WSResponse
	done    chan struct{}
	once    sync.Once
	logger  *slog.Logger
}

func newSession(h *Handler, conn *websocket.Conn, r *http.Request) *Session {
	id := uuid.New().String()
	return &Session{
		id:      id,
		conn:    conn,
		handler: h,
		request: r,
		send:    make(chan api.WSResponse, sendBuffer),
		done:    make(chan struct{}),
		logger:  h.logger.With(slog.String("session_id", id)),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// Close ends the session. The writer sends a close frame and releases the
// connection, which in turn stops the reader.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// readPump reads requests until the connection fails or the session closes
func (s *Session) readPump(ctx context.Context) {
	defer s.Close()

	cfg := s.handler.opts.Config
	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
		s.handler.metrics.RecordMessage(ctx, "in", "query")

		resp := s.handle(ctx, message)
		select {
		case s.send <- resp:
		case <-s.done:
			return
		}
	}
}

// writePump writes responses and keeps the connection alive with pings
func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.handler.opts.Config.PingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case resp := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(resp); err != nil {
				s.logger.WarnContext(ctx, "websocket write failed", slog.String("error", err.Error()))
				s.Close()
				return
			}
			s.handler.metrics.RecordMessage(ctx, "out", string(resp.Type))

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handle answers one request message
func (s *Session) handle(ctx context.Context, message []byte) api.WSResponse {
	var req api.QueryRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return s.errorResponse(ctx, "", apierrors.InvalidRequestWithError(err))
	}
	if req.Question == "" {
		return s.errorResponse(ctx, req.ID, apierrors.ErrValidation("question", "question is required"))
	}
	if err := s.handler.validator.ValidateStruct(req); err != nil {
		return s.errorResponse(ctx, req.ID, err)
	}

	params, err := services.ParamsFromRequest(req)
	if err != nil {
		return s.errorResponse(ctx, req.ID, err)
	}

	if timeout := s.handler.opts.QueryTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := s.handler.service.Run(ctx, domain.Question(req.Question), params)
	if err != nil {
		return s.errorResponse(ctx, req.ID, err)
	}
	return api.WSResponse{
		Type:      api.WSMessageResult,
		ID:        req.ID,
		Result:    result,
		Timestamp: time.Now().UTC(),
	}
}

func (s *Session) errorResponse(ctx context.Context, id string, err error) api.WSResponse {
	problem := s.handler.errorHandler.ErrorToProblem(err, s.request).
		WithExtension("session_id", s.id)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "websocket request failed",
		slog.String("request_id", id),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()))

	return api.WSResponse{
		Type:      api.WSMessageError,
		ID:        id,
		Error:     problem,
		Timestamp: time.Now().UTC(),
	}
}
