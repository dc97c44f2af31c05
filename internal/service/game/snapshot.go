package game

import (
	"github.com/kapu/chess-duel-go/internal/rules"
	"github.com/kapu/chess-duel-go/pkg/gamedto"
)

// capturedScanOrder fixes the marker order in the captured lists.
var capturedScanOrder = []rules.PieceType{
	rules.Queen,
	rules.Rook,
	rules.Bishop,
	rules.Knight,
	rules.Pawn,
}

var initialPieceCounts = map[rules.PieceType]int{
	rules.Queen:  1,
	rules.Rook:   2,
	rules.Bishop: 2,
	rules.Knight: 2,
	rules.Pawn:   8,
}

var pieceMarkers = map[rules.Color]map[rules.PieceType]string{
	rules.White: {
		rules.Queen:  "♕",
		rules.Rook:   "♖",
		rules.Bishop: "♗",
		rules.Knight: "♘",
		rules.Pawn:   "♙",
	},
	rules.Black: {
		rules.Queen:  "♛",
		rules.Rook:   "♜",
		rules.Bishop: "♝",
		rules.Knight: "♞",
		rules.Pawn:   "♟",
	},
}

// capturedPieces reports each side's piece-count deficit against the
// initial setup. A missing white piece means white lost it, so its marker
// lands in the white list.
func capturedPieces(pos rules.Oracle) (capturedWhite, capturedBlack []string) {
	capturedWhite = []string{}
	capturedBlack = []string{}
	for _, pt := range capturedScanOrder {
		for i := 0; i < deficit(pos, rules.White, pt); i++ {
			capturedWhite = append(capturedWhite, pieceMarkers[rules.White][pt])
		}
		for i := 0; i < deficit(pos, rules.Black, pt); i++ {
			capturedBlack = append(capturedBlack, pieceMarkers[rules.Black][pt])
		}
	}
	return capturedWhite, capturedBlack
}

func deficit(pos rules.Oracle, c rules.Color, pt rules.PieceType) int {
	lost := initialPieceCounts[pt] - pos.PieceCount(c, pt)
	if lost < 0 {
		return 0
	}
	return lost
}

// snapshotLocked projects the session into the client-facing state. The
// caller holds the session mutex.
func (s *Service) snapshotLocked(info *gamedto.SearchInfo) *gamedto.GameState {
	sess := s.session
	pos := sess.Position

	history := make([]gamedto.MoveRecord, len(sess.History))
	for i, rec := range sess.History {
		history[i] = gamedto.MoveRecord{
			Notation: rec.Notation,
			FromSq:   rec.FromSq,
			ToSq:     rec.ToSq,
			Color:    rec.Color.String(),
			UCI:      rec.UCI,
		}
	}

	var last *gamedto.LastMove
	if n := len(sess.History); n > 0 {
		last = &gamedto.LastMove{
			FromSq: sess.History[n-1].FromSq,
			ToSq:   sess.History[n-1].ToSq,
		}
	}

	capturedWhite, capturedBlack := capturedPieces(pos)

	return &gamedto.GameState{
		SessionUUID:   sess.UUID,
		FEN:           pos.FEN(),
		Turn:          pos.Turn().String(),
		IsCheck:       pos.IsCheck(),
		IsCheckmate:   pos.IsCheckmate(),
		IsStalemate:   pos.IsStalemate(),
		IsGameOver:    pos.IsGameOver(),
		GameResult:    resultLabel(pos),
		LegalMoves:    pos.LegalMoves(),
		MoveHistory:   history,
		CapturedWhite: capturedWhite,
		CapturedBlack: capturedBlack,
		LastMove:      last,
		AISearchInfo:  info,
	}
}

func resultLabel(pos rules.Oracle) string {
	if !pos.IsGameOver() {
		return ""
	}
	switch pos.Result() {
	case rules.WhiteWins:
		return "white_wins"
	case rules.BlackWins:
		return "black_wins"
	case rules.Draw:
		return "draw"
	default:
		return ""
	}
}
