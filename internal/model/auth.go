package model

type AccessToken struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type LoginRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type LoginResponse struct {
	PlayerID    string `json:"player_id"`
	AccessToken string `json:"access_token"`
}
