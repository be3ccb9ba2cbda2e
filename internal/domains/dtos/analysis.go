package dtos

type AnalysisRequest struct {
	GameId string `json:"gameId"`
	Fen    string `json:"fen"`
	Depth  int    `json:"depth"`
}

type AnalysisResult struct {
	BestMove   string `json:"bestMove"`
	Evaluation int    `json:"evaluation"`
	Pv         string `json:"pv"`
	Depth      int    `json:"depth"`
	Mate       *int   `json:"mate,omitempty"`
}
