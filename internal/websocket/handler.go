package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"olistdash/internal/analytics"
	"olistdash/internal/config"
	apierrors "olistdash/internal/errors"
	"olistdash/internal/infrastructure"
	"olistdash/internal/middleware"
	"olistdash/pkg/contracts/domain"
)

// QueryService runs dashboard questions
type QueryService interface {
	Run(ctx context.Context, question domain.Question, params analytics.Params) (*domain.QueryResult, error)
}

// Options configures the handler
type Options struct {
	Config config.WebSocketConfig
	// AllowedOrigins lists browser origins that may connect. Requests
	// without an Origin header and same-host origins are always allowed.
	AllowedOrigins []string
	QueryTimeout   time.Duration
}

// Handler upgrades /ws requests and runs a Session per connection
type Handler struct {
	hub          *Hub
	service      QueryService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.DashboardMetrics
	upgrader     websocket.Upgrader
	opts         Options
	logger       *slog.Logger
}

// NewHandler creates a WebSocket handler. metrics may be nil.
func NewHandler(hub *Hub, service QueryService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.DashboardMetrics, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := config.Default().WebSocket
	if opts.Config.PongWait <= 0 {
		opts.Config.PongWait = defaults.PongWait
	}
	if opts.Config.PingPeriod <= 0 || opts.Config.PingPeriod >= opts.Config.PongWait {
		opts.Config.PingPeriod = opts.Config.PongWait * 9 / 10
	}
	if opts.Config.MaxMessageSize <= 0 {
		opts.Config.MaxMessageSize = defaults.MaxMessageSize
	}

	h := &Handler{
		hub:          hub,
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		metrics:      metrics,
		opts:         opts,
		logger:       logger.With(slog.String("component", "websocket")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.Config.ReadBufferSize,
		WriteBufferSize: opts.Config.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.errorHandler.HandleError(w, r, apierrors.New(status, "WEBSOCKET_UPGRADE_FAILED", reason.Error()))
		},
	}
	return h
}

// ServeHTTP upgrades the connection and serves the session until it closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered with a problem response
		return
	}

	s := newSession(h, conn, r)
	if !h.hub.Register(s) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	// Detached so the session outlives the handler's request deadline
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	ctx = infrastructure.WithTraceID(ctx, s.id)

	h.metrics.RecordSession(ctx, 1)
	connectedAt := time.Now()
	s.logger.InfoContext(ctx, "websocket session opened",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	go s.writePump(ctx)
	s.readPump(ctx)

	cancel()
	h.hub.Unregister(s)
	h.metrics.RecordSession(ctx, -1)
	s.logger.InfoContext(ctx, "websocket session closed",
		slog.Duration("duration", time.Since(connectedAt)))
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "websocket origin rejected",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.opts.AllowedOrigins))
	return false
}
