package trainerdto

// ConvertRequest carries exactly one of SAN or LAN. An empty FEN means the
// standard starting position; Moves are LAN moves played from it first.
type ConvertRequest struct {
	FEN   string   `json:"fen,omitempty"`
	Moves []string `json:"moves,omitempty"`
	SAN   string   `json:"san,omitempty"`
	LAN   string   `json:"lan,omitempty"`
}

type ConvertResponse struct {
	SAN string `json:"san"`
	LAN string `json:"lan"`
	FEN string `json:"fen"`
}
