package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/chess-duel-go/internal/engine"
	"github.com/kapu/chess-duel-go/internal/rules"
	"github.com/kapu/chess-duel-go/pkg/gamedto"
)

const (
	minSearchDepth     = 1
	maxSearchDepth     = 20
	DefaultSearchDepth = 8

	// searchSafetyTimeout is handed to the engine so its search
	// self-terminates even under delay; this layer never times the read.
	searchSafetyTimeout = 120000 // ms
)

// Searcher selects a move for a position. Implemented by the engine process
// supervisor; faked in tests.
type Searcher interface {
	BestMove(req engine.Request) (engine.Response, error)
	// Start restarts the engine process, discarding its transposition table.
	Start() error
}

// MoveRecord is one applied ply. Notation is rendered against the position
// the move was played from, so records are built before pushing.
type MoveRecord struct {
	Notation string
	FromSq   string
	ToSq     string
	Color    rules.Color
	UCI      string
}

// Session is the single mutable game. NewGame replaces it wholesale; it is
// never reset in place.
type Session struct {
	UUID        string
	Position    rules.Oracle
	AIColor     rules.Color
	SearchDepth int
	History     []MoveRecord
	StartedAt   time.Time
}

// Service orchestrates the session: turn validation, move application,
// engine calls and undo. All mutating operations are serialized by one
// mutex scoped to the session.
type Service struct {
	searcher  Searcher
	newOracle func() rules.Oracle
	logger    *zap.Logger

	mu      sync.Mutex
	session *Session
}

func NewService(searcher Searcher, newOracle func() rules.Oracle, logger *zap.Logger) (*Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if newOracle == nil {
		newOracle = rules.NewBoardOracle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		searcher:  searcher,
		newOracle: newOracle,
		logger:    logger,
	}
	s.session = freshSession(rules.Black, DefaultSearchDepth, newOracle)
	return s, nil
}

// NewGame replaces the session and restarts the engine so it searches with
// a fresh transposition table. When the AI plays White its opening move is
// applied before the snapshot is returned.
func (s *Service) NewGame(aiColor string, depth int) (*gamedto.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	color := rules.Black
	if strings.EqualFold(strings.TrimSpace(aiColor), "white") {
		color = rules.White
	}
	s.session = freshSession(color, depth, s.newOracle)

	if err := s.searcher.Start(); err != nil {
		s.logger.Warn("engine restart on new game failed", zap.Error(err))
	}

	s.logger.Info("new game",
		zap.String("session_uuid", s.session.UUID),
		zap.String("ai_color", color.String()),
		zap.Int("depth", s.session.SearchDepth),
	)

	if color == rules.White {
		return s.snapshotLocked(s.engineMoveLocked()), nil
	}
	return s.snapshotLocked(nil), nil
}

// PlayerMove applies the human's move only; the engine's reply is a
// separate request so the client can render the player's ply immediately.
func (s *Service) PlayerMove(move, promotion string) (*gamedto.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess.Position.IsGameOver() {
		return nil, ErrGameOver
	}
	if sess.Position.Turn() != sess.AIColor.Other() {
		return nil, ErrNotYourTurn
	}

	uci, err := normalizeMoveCode(move, promotion)
	if err != nil {
		return nil, err
	}
	if !containsMove(sess.Position.LegalMoves(), uci) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	if err := s.applyMoveLocked(uci); err != nil {
		return nil, err
	}
	return s.snapshotLocked(nil), nil
}

// EngineMove runs the search and applies the engine's reply. When the game
// is over or it is not the engine's turn this is a read-only no-op, safe to
// call any number of times.
func (s *Service) EngineMove() *gamedto.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess.Position.IsGameOver() || sess.Position.Turn() != sess.AIColor {
		return s.snapshotLocked(nil)
	}
	return s.snapshotLocked(s.engineMoveLocked())
}

// Undo rewinds the engine's reply and the player's move. When the engine
// moved first the ply count is odd, so one corrective pop realigns the turn;
// a final remaining ply is discarded in that case rather than preserved.
func (s *Service) Undo() (*gamedto.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if len(sess.History) == 0 {
		return nil, ErrNothingToUndo
	}

	for i := 0; i < 2 && len(sess.History) > 0; i++ {
		s.popLocked()
	}
	if sess.Position.Turn() != sess.AIColor.Other() && len(sess.History) > 0 {
		s.popLocked()
	}
	return s.snapshotLocked(nil), nil
}

// State is a pure read.
func (s *Service) State() *gamedto.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(nil)
}

// CurrentFEN exports the live position for presentation layers.
func (s *Service) CurrentFEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Position.FEN()
}

// LastMoveSquares reports the most recent ply's endpoints, empty strings
// when no move was played yet.
func (s *Service) LastMoveSquares() (from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.session.History); n > 0 {
		return s.session.History[n-1].FromSq, s.session.History[n-1].ToSq
	}
	return "", ""
}

// engineMoveLocked drives one search. Transport and protocol failures are
// absorbed: the engine simply makes no move this turn and the info block
// stays zero-valued.
func (s *Service) engineMoveLocked() *gamedto.SearchInfo {
	sess := s.session
	info := &gamedto.SearchInfo{}

	resp, err := s.searcher.BestMove(engine.Request{
		FEN:           sess.Position.FEN(),
		Depth:         sess.SearchDepth,
		TimeoutMillis: searchSafetyTimeout,
	})
	if err != nil {
		s.logger.Warn("engine search failed",
			zap.Error(err),
			zap.String("session_uuid", sess.UUID),
		)
		return info
	}

	info.Depth = resp.Depth
	info.Eval = resp.Eval
	info.Nodes = resp.Nodes
	info.TimeMs = resp.TimeMillis
	info.TTHits = resp.TTHits
	info.TTStores = resp.TTStores

	best := strings.ToLower(strings.TrimSpace(resp.BestMove))
	switch {
	case best == "":
		s.logger.Warn("engine returned no bestmove", zap.String("session_uuid", sess.UUID))
	case !containsMove(sess.Position.LegalMoves(), best):
		s.logger.Warn("engine returned illegal move",
			zap.String("move", best),
			zap.String("fen", sess.Position.FEN()),
		)
	default:
		if err := s.applyMoveLocked(best); err != nil {
			s.logger.Warn("engine move apply failed", zap.Error(err), zap.String("move", best))
		}
	}

	// The engine scores from the searching side; flip when the AI is Black
	// so evaluation is always from the human player's perspective.
	if sess.AIColor == rules.Black {
		info.Eval = -info.Eval
	}
	return info
}

// applyMoveLocked builds the record from the pre-move position, then pushes
// and appends together so history and position never diverge.
func (s *Service) applyMoveLocked(uci string) error {
	sess := s.session
	san, err := sess.Position.SAN(uci)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	rec := MoveRecord{
		Notation: san,
		FromSq:   uci[:2],
		ToSq:     uci[2:4],
		Color:    sess.Position.Turn(),
		UCI:      uci,
	}
	if err := sess.Position.Push(uci); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, uci)
	}
	sess.History = append(sess.History, rec)
	return nil
}

func (s *Service) popLocked() {
	sess := s.session
	if err := sess.Position.Pop(); err != nil {
		s.logger.Error("position pop failed", zap.Error(err))
		return
	}
	sess.History = sess.History[:len(sess.History)-1]
}

func freshSession(aiColor rules.Color, depth int, newOracle func() rules.Oracle) *Session {
	return &Session{
		UUID:        uuid.NewString(),
		Position:    newOracle(),
		AIColor:     aiColor,
		SearchDepth: clampDepth(depth),
		History:     []MoveRecord{},
		StartedAt:   time.Now(),
	}
}

func clampDepth(depth int) int {
	if depth < minSearchDepth {
		return minSearchDepth
	}
	if depth > maxSearchDepth {
		return maxSearchDepth
	}
	return depth
}

// normalizeMoveCode lowercases the move and substitutes a separately
// supplied promotion letter into the code's fifth character.
func normalizeMoveCode(move, promotion string) (string, error) {
	uci := strings.ToLower(strings.TrimSpace(move))
	promo := strings.ToLower(strings.TrimSpace(promotion))
	if promo != "" {
		if len(promo) != 1 || !strings.Contains("qrbn", promo) || len(uci) < 4 {
			return "", fmt.Errorf("%w: %s", ErrBadMoveFormat, move)
		}
		uci = uci[:4] + promo
	}
	if !validMoveCode(uci) {
		return "", fmt.Errorf("%w: %s", ErrBadMoveFormat, move)
	}
	return uci, nil
}

func validMoveCode(uci string) bool {
	if len(uci) != 4 && len(uci) != 5 {
		return false
	}
	if uci[0] < 'a' || uci[0] > 'h' || uci[2] < 'a' || uci[2] > 'h' {
		return false
	}
	if uci[1] < '1' || uci[1] > '8' || uci[3] < '1' || uci[3] > '8' {
		return false
	}
	if len(uci) == 5 && !strings.ContainsRune("qrbn", rune(uci[4])) {
		return false
	}
	return true
}

func containsMove(moves []string, uci string) bool {
	for _, mv := range moves {
		if mv == uci {
			return true
		}
	}
	return false
}
