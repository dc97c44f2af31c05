package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// boardOracle adapts corentings/chess/v2 to the Oracle interface. The game
// is always reconstructed from the initial position plus the retained move
// codes, so Pop is a replay of all but the last move.
type boardOracle struct {
	game  *nchess.Game
	moves []string
}

// NewBoardOracle returns an Oracle at the initial position.
func NewBoardOracle() Oracle {
	return &boardOracle{game: nchess.NewGame()}
}

func (o *boardOracle) FEN() string {
	return o.game.FEN()
}

func (o *boardOracle) Turn() Color {
	if o.game.Position().Turn() == nchess.White {
		return White
	}
	return Black
}

func (o *boardOracle) LegalMoves() []string {
	pos := o.game.Position()
	valid := o.game.ValidMoves()
	notation := nchess.UCINotation{}
	out := make([]string, 0, len(valid))
	for i := range valid {
		out = append(out, strings.ToLower(notation.Encode(pos, &valid[i])))
	}
	return out
}

func (o *boardOracle) SAN(uci string) (string, error) {
	pos := o.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, strings.ToLower(strings.TrimSpace(uci)))
	if err != nil {
		return "", fmt.Errorf("decode move %s: %w", uci, err)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv), nil
}

func (o *boardOracle) Push(uci string) error {
	code := strings.ToLower(strings.TrimSpace(uci))
	mv, err := nchess.UCINotation{}.Decode(o.game.Position(), code)
	if err != nil {
		return fmt.Errorf("decode move %s: %w", uci, err)
	}
	if err := o.game.Move(mv, nil); err != nil {
		return fmt.Errorf("apply move %s: %w", uci, err)
	}
	o.moves = append(o.moves, code)
	return nil
}

func (o *boardOracle) Pop() error {
	if len(o.moves) == 0 {
		return fmt.Errorf("no moves to pop")
	}
	remaining := o.moves[:len(o.moves)-1]
	game, err := replay(remaining)
	if err != nil {
		return err
	}
	o.game = game
	o.moves = remaining
	return nil
}

func (o *boardOracle) PlyCount() int {
	return len(o.moves)
}

func (o *boardOracle) IsCheck() bool {
	moves := o.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(nchess.Check)
}

func (o *boardOracle) IsCheckmate() bool {
	return o.game.Position().Status() == nchess.Checkmate
}

func (o *boardOracle) IsStalemate() bool {
	return o.game.Position().Status() == nchess.Stalemate
}

func (o *boardOracle) IsGameOver() bool {
	return o.game.Outcome() != nchess.NoOutcome
}

func (o *boardOracle) Result() Result {
	switch o.game.Outcome() {
	case nchess.WhiteWon:
		return WhiteWins
	case nchess.BlackWon:
		return BlackWins
	case nchess.Draw:
		return Draw
	default:
		return NoResult
	}
}

func (o *boardOracle) PieceCount(c Color, pt PieceType) int {
	wantColor, wantType := nativePiece(c, pt)
	board := o.game.Position().Board()
	count := 0
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			if piece.Color() == wantColor && piece.Type() == wantType {
				count++
			}
		}
	}
	return count
}

func replay(moves []string) (*nchess.Game, error) {
	game := nchess.NewGame()
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %s: %w", mv, err)
		}
	}
	return game, nil
}

func nativePiece(c Color, pt PieceType) (nchess.Color, nchess.PieceType) {
	color := nchess.White
	if c == Black {
		color = nchess.Black
	}
	var kind nchess.PieceType
	switch pt {
	case Pawn:
		kind = nchess.Pawn
	case Knight:
		kind = nchess.Knight
	case Bishop:
		kind = nchess.Bishop
	case Rook:
		kind = nchess.Rook
	case Queen:
		kind = nchess.Queen
	default:
		kind = nchess.King
	}
	return color, kind
}
