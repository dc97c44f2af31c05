package rules

// Color is a side in the game.
type Color int8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType identifies a kind of piece independent of color.
type PieceType int8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

// Result is the terminal outcome of a finished game.
type Result int8

const (
	NoResult Result = iota
	WhiteWins
	BlackWins
	Draw
)

// Oracle is the rules-engine capability the orchestrator depends on: board
// state, legality, notation and terminal detection. Concrete adapters wrap
// a real chess-rules library; tests may substitute their own.
//
// Move codes are lowercase UCI (origin square, destination square, optional
// promotion letter).
type Oracle interface {
	// FEN exports the canonical position string.
	FEN() string
	// Turn reports the side to move.
	Turn() Color
	// LegalMoves enumerates every legal move code in the current position.
	LegalMoves() []string
	// SAN renders a pending move code as notation against the current
	// position, without applying it.
	SAN(uci string) (string, error)
	// Push applies a move. Pop reverses the most recent one.
	Push(uci string) error
	Pop() error
	// PlyCount is the number of plies applied so far.
	PlyCount() int

	IsCheck() bool
	IsCheckmate() bool
	IsStalemate() bool
	IsGameOver() bool
	Result() Result

	// PieceCount reports how many pieces of the given type and color remain
	// on the board.
	PieceCount(c Color, pt PieceType) int
}
