package model

import "time"

// RewardEvent fans out on the reward event topic after every spin and after
// every settled transfer.
type RewardEvent struct {
	PlayerID      string    `json:"player_id"`
	WalletAddress string    `json:"wallet_address"`
	Segment       string    `json:"segment"`
	TokenID       string    `json:"token_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	TxHash        string    `json:"tx_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
