package gamedto

type NewGameRequest struct {
	AIColor string `json:"ai_color"`
	Depth   int    `json:"depth"`
}

type MoveRequest struct {
	Move      string `json:"move"`
	Promotion string `json:"promotion,omitempty"`
}
