package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/kapu/chess-duel-go/internal/render"
	"github.com/kapu/chess-duel-go/internal/service/game"
	"github.com/kapu/chess-duel-go/pkg/gamedto"
)

// Server exposes the game service over JSON plus one PNG board endpoint.
type Server struct {
	svc          *game.Service
	renderer     render.Renderer
	logger       *zap.Logger
	defaultDepth int

	http *fasthttp.Server
}

func New(svc *game.Service, renderer render.Renderer, defaultDepth int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDepth <= 0 {
		defaultDepth = game.DefaultSearchDepth
	}
	s := &Server{
		svc:          svc,
		renderer:     renderer,
		logger:       logger,
		defaultDepth: defaultDepth,
	}
	s.http = &fasthttp.Server{
		Handler:            s.Handle,
		Name:               "chessd",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       150 * time.Second, // engine searches block the response
		MaxRequestBodySize: 1 << 20,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http listening", zap.String("addr", addr))
	return s.http.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	return s.http.Shutdown()
}

// Handle routes a single request. The surface is small enough that a
// method+path switch beats pulling in a router.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	method := string(ctx.Method())
	path := string(ctx.Path())

	switch {
	case method == fasthttp.MethodPost && path == "/api/new-game":
		s.handleNewGame(ctx)
	case method == fasthttp.MethodPost && path == "/api/move":
		s.handleMove(ctx)
	case method == fasthttp.MethodPost && path == "/api/ai-move":
		s.handleAIMove(ctx)
	case method == fasthttp.MethodPost && path == "/api/undo":
		s.handleUndo(ctx)
	case method == fasthttp.MethodGet && path == "/api/state":
		s.writeJSON(ctx, fasthttp.StatusOK, s.svc.State())
	case method == fasthttp.MethodGet && path == "/api/board.png":
		s.handleBoardPNG(ctx)
	case method == fasthttp.MethodGet && path == "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	default:
		s.writeJSON(ctx, fasthttp.StatusNotFound, gamedto.ErrorResponse{
			Reason:  "not_found",
			Message: fmt.Sprintf("no route for %s %s", method, path),
		})
	}
}

func (s *Server) handleNewGame(ctx *fasthttp.RequestCtx) {
	var req gamedto.NewGameRequest
	if !s.readJSON(ctx, &req) {
		return
	}
	depth := req.Depth
	if depth <= 0 {
		depth = s.defaultDepth
	}
	state, err := s.svc.NewGame(req.AIColor, depth)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, state)
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	var req gamedto.MoveRequest
	if !s.readJSON(ctx, &req) {
		return
	}
	state, err := s.svc.PlayerMove(req.Move, req.Promotion)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, state)
}

func (s *Server) handleAIMove(ctx *fasthttp.RequestCtx) {
	s.writeJSON(ctx, fasthttp.StatusOK, s.svc.EngineMove())
}

func (s *Server) handleUndo(ctx *fasthttp.RequestCtx) {
	state, err := s.svc.Undo()
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, state)
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx) {
	if s.renderer == nil {
		s.writeJSON(ctx, fasthttp.StatusNotFound, gamedto.ErrorResponse{
			Reason:  "not_found",
			Message: "board rendering is disabled",
		})
		return
	}
	var highlight *render.Highlight
	if from, to := s.svc.LastMoveSquares(); from != "" && to != "" {
		fromSq, okFrom := render.SquareFromName(from)
		toSq, okTo := render.SquareFromName(to)
		if okFrom && okTo {
			highlight = &render.Highlight{From: fromSq, To: toSq}
		}
	}
	png, err := s.renderer.RenderPNG(s.svc.CurrentFEN(), highlight)
	if err != nil {
		s.logger.Error("board render failed", zap.Error(err))
		s.writeJSON(ctx, fasthttp.StatusInternalServerError, gamedto.ErrorResponse{
			Reason:  "render_failed",
			Message: err.Error(),
		})
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}

func (s *Server) readJSON(ctx *fasthttp.RequestCtx, out any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		// An empty body means all-default fields, matching a bare POST.
		return true
	}
	if err := json.Unmarshal(body, out); err != nil {
		s.writeJSON(ctx, fasthttp.StatusBadRequest, gamedto.ErrorResponse{
			Reason:  gamedto.ReasonFormat,
			Message: "invalid json body",
		})
		return false
	}
	return true
}

// writeServiceError translates domain sentinels into stable reason codes so
// clients can branch without parsing messages.
func (s *Server) writeServiceError(ctx *fasthttp.RequestCtx, err error) {
	reason := "internal"
	status := fasthttp.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrGameOver):
		reason, status = gamedto.ReasonGameOver, fasthttp.StatusBadRequest
	case errors.Is(err, game.ErrNotYourTurn):
		reason, status = gamedto.ReasonTurn, fasthttp.StatusBadRequest
	case errors.Is(err, game.ErrBadMoveFormat):
		reason, status = gamedto.ReasonFormat, fasthttp.StatusBadRequest
	case errors.Is(err, game.ErrIllegalMove):
		reason, status = gamedto.ReasonIllegal, fasthttp.StatusBadRequest
	case errors.Is(err, game.ErrNothingToUndo):
		reason, status = gamedto.ReasonNothingToUndo, fasthttp.StatusBadRequest
	default:
		s.logger.Error("unexpected service error", zap.Error(err))
	}
	s.writeJSON(ctx, status, gamedto.ErrorResponse{Reason: reason, Message: err.Error()})
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("response marshal failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(payload)
}
