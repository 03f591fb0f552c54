package trainerdto

// CandidateDTO is one ranked engine line. Score is "cp N" or "mate N" from
// White's point of view.
type CandidateDTO struct {
	Rank  int      `json:"rank"`
	Score string   `json:"score"`
	Line  []string `json:"line"`
}

// JudgeRequest judges Played against Candidates when they are given, or
// against Reference in single-score mode. Color is "white" or "black".
type JudgeRequest struct {
	Color      string         `json:"color"`
	Played     string         `json:"played"`
	PlayedLAN  string         `json:"playedLan,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Candidates []CandidateDTO `json:"candidates,omitempty"`
}

type JudgeResponse struct {
	Judgement    string  `json:"judgement"`
	Loss         float64 `json:"loss"`
	Reference    string  `json:"reference"`
	ReferenceLAN string  `json:"referenceLan,omitempty"`
	PlayedRank   int     `json:"playedRank,omitempty"`
}

// ReviewRequest asks the engine about a move. Played is SAN or LAN.
type ReviewRequest struct {
	FEN    string   `json:"fen,omitempty"`
	Moves  []string `json:"moves,omitempty"`
	Played string   `json:"played"`
}

type ReviewResponse struct {
	JudgeResponse
	PlayedSAN  string         `json:"playedSan"`
	PlayedLAN  string         `json:"playedLan"`
	BestSAN    string         `json:"bestSan,omitempty"`
	BestLAN    string         `json:"bestLan,omitempty"`
	InBook     bool           `json:"inBook"`
	Opening    *Opening       `json:"opening,omitempty"`
	Depth      int            `json:"depth"`
	Candidates []CandidateDTO `json:"candidates"`
}
