package trainerdto

type LinesRequest struct {
	PGN string `json:"pgn"`
}

type Opening struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type LineDTO struct {
	Signature string   `json:"signature"`
	LAN       []string `json:"lan"`
	SAN       []string `json:"san"`
	Opening   *Opening `json:"opening,omitempty"`
}

type LinesResponse struct {
	Tags  map[string]string `json:"tags,omitempty"`
	Plies int               `json:"plies"`
	Lines []LineDTO         `json:"lines"`
}
