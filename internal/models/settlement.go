package models

// Reward records a single winner's credited gain from a settlement
type Reward struct {
	UserID uint  `json:"user_id"`
	Gain   int64 `json:"gain"`
}

// SettlementResult is the outcome of a pari-mutuel settlement: the losing
// pool is redistributed to winning voters in proportion to their stakes.
type SettlementResult struct {
	PredictionID  uint     `json:"prediction_id"`
	WinningOption string   `json:"winning_option"`
	Ratio         float64  `json:"ratio"`
	TotalPoints   int64    `json:"total_points"`
	WinningPoints int64    `json:"winning_points"`
	Rewards       []Reward `json:"rewards"`
}
