package gamedto

// Failure reasons surfaced by the move and undo commands.
const (
	ReasonGameOver      = "game_over"
	ReasonTurn          = "turn"
	ReasonFormat        = "format"
	ReasonIllegal       = "illegal"
	ReasonNothingToUndo = "nothing_to_undo"
)

type ErrorResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
