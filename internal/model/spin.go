package model

import "time"

type SpinRequest struct{}

type SpinResponse struct {
	Segment        string `json:"segment"`
	IsWin          bool   `json:"is_win"`
	TokenID        string `json:"token_id,omitempty"`
	Amount         string `json:"amount,omitempty"`
	SpinsRemaining int    `json:"spins_remaining"`
	TxHash         string `json:"tx_hash,omitempty"`
}

type GetPlayerRequest struct {
	PlayerID string `form:"player_id"`
}

type GetPlayerResponse struct {
	Player Player `json:"player"`
}

type Player struct {
	ID             string    `json:"id"`
	WalletAddress  string    `json:"wallet_address"`
	SpinsRemaining int       `json:"spins_remaining"`
	LastSpinAt     time.Time `json:"last_spin_at"`
	TotalSpins     int       `json:"total_spins"`
	TotalWins      int       `json:"total_wins"`
	Balances       []Balance `json:"balances"`
}

type Balance struct {
	TokenID     string `json:"token_id"`
	Symbol      string `json:"symbol"`
	Accumulated string `json:"accumulated"`
	Claimed     string `json:"claimed"`
}

type GetSpinHistoryRequest struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

type GetSpinHistoryResponse struct {
	Spins []SpinRecord `json:"spins"`
}

type SpinRecord struct {
	ID        string    `json:"id"`
	Segment   string    `json:"segment"`
	TokenID   string    `json:"token_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	IsWin     bool      `json:"is_win"`
	TxHash    string    `json:"tx_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GetTokensRequest struct{}

type GetTokensResponse struct {
	Tokens []RewardToken `json:"tokens"`
}

type RewardToken struct {
	TokenID  string `json:"token_id"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}
