package gamedto

// MoveRecord is one applied ply as reported to the client. Notation is SAN
// rendered against the position the move was played from.
type MoveRecord struct {
	Notation string `json:"notation"`
	FromSq   string `json:"from_sq"`
	ToSq     string `json:"to_sq"`
	Color    string `json:"color"`
	UCI      string `json:"uci"`
}

type LastMove struct {
	FromSq string `json:"from_sq"`
	ToSq   string `json:"to_sq"`
}

// SearchInfo mirrors the engine's per-search report. All fields stay zero
// when the engine made no move this turn.
type SearchInfo struct {
	Depth    int   `json:"depth"`
	Eval     int   `json:"eval"`
	Nodes    int64 `json:"nodes"`
	TimeMs   int64 `json:"time"`
	TTHits   int64 `json:"tt_hits"`
	TTStores int64 `json:"tt_stores"`
}

type GameState struct {
	SessionUUID   string       `json:"session_uuid"`
	FEN           string       `json:"fen"`
	Turn          string       `json:"turn"`
	IsCheck       bool         `json:"is_check"`
	IsCheckmate   bool         `json:"is_checkmate"`
	IsStalemate   bool         `json:"is_stalemate"`
	IsGameOver    bool         `json:"is_game_over"`
	GameResult    string       `json:"game_result,omitempty"`
	LegalMoves    []string     `json:"legal_moves"`
	MoveHistory   []MoveRecord `json:"move_history"`
	CapturedWhite []string     `json:"captured_white"`
	CapturedBlack []string     `json:"captured_black"`
	LastMove      *LastMove    `json:"last_move,omitempty"`
	AISearchInfo  *SearchInfo  `json:"ai_search_info,omitempty"`
}
