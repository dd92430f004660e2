// Package ws streams solve progress over a WebSocket: zero or more status
// frames, then exactly one result frame per request. A request that fails
// gets an error frame followed by an empty result frame.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/domain"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
	"github.com/kailas-cloud/numreach/internal/transport/wire"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

const (
	maxMessageBytes = 64 << 10
	writeWait       = 5 * time.Second
)

// SolveService answers a single puzzle with progress.
type SolveService interface {
	Solve(ctx context.Context, req request.Request, progress solver.ProgressFunc) (solve.Outcome, error)
}

// Handler upgrades GET requests and serves solve requests sequentially on
// the connection until the client closes it.
type Handler struct {
	solve      SolveService
	maxNumbers int
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(s SolveService, logger *zap.Logger) *Handler {
	return &Handler{
		solve:  s,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16 << 10,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// WithMaxNumbers sets the per-request input size limit.
func (h *Handler) WithMaxNumbers(n int) *Handler {
	h.maxNumbers = n
	return h
}

// WithCheckOrigin replaces the permissive default origin check.
func (h *Handler) WithCheckOrigin(fn func(*http.Request) bool) *Handler {
	h.upgrader.CheckOrigin = fn
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)
	// The HTTP server's read deadline outlives the upgrade.
	_ = conn.SetReadDeadline(time.Time{})

	ctx := r.Context()
	for {
		var body wire.SolveRequest
		if err := conn.ReadJSON(&body); err != nil {
			if isDecodeError(err) {
				if !h.fail(conn, wire.CodeBadRequest, "invalid message: "+err.Error()) {
					return
				}
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		if !h.serveOne(ctx, conn, body) {
			return
		}
	}
}

// serveOne answers one request. It returns false when the connection is no
// longer writable.
func (h *Handler) serveOne(ctx context.Context, conn *websocket.Conn, body wire.SolveRequest) bool {
	req, err := request.New(body.Numbers, body.Target, body.Level, h.maxNumbers)
	if err != nil {
		return h.fail(conn, wire.CodeValidationFailed, err.Error())
	}

	writable := true
	progress := func(status string) {
		if writable {
			writable = h.send(conn, wire.StatusFrame{Status: status})
		}
	}

	out, err := h.solve.Solve(ctx, req, progress)
	if err != nil {
		code := wire.CodeInternalError
		msg := "internal error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrCacheUnavailable) {
			code, msg = wire.CodeUnavailable, err.Error()
		} else {
			h.logger.Error("websocket solve failed", zap.Error(err))
		}
		return writable && h.fail(conn, code, msg)
	}

	return writable && h.send(conn, wire.ResultFrame{ID: out.ID, Result: wire.NewResult(out.Result)})
}

// fail reports a failed request and closes it with the empty result.
func (h *Handler) fail(conn *websocket.Conn, code wire.ErrorCode, msg string) bool {
	if !h.send(conn, wire.ErrorFrame{Error: wire.ErrorResponse{Code: code, Message: msg}}) {
		return false
	}
	return h.send(conn, wire.ResultFrame{Result: wire.EmptyResult()})
}

// isDecodeError reports whether err came from decoding a complete message,
// leaving the connection usable.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (h *Handler) send(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(v); err != nil {
		h.logger.Warn("failed to write websocket frame", zap.Error(err))
		return false
	}
	return true
}
