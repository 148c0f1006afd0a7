package model

import "github.com/spinvault/backend/internal/entity"

func ConvertPlayer(player *entity.Player, spinsRemaining int, balances []Balance) Player {
	if player == nil {
		return Player{}
	}

	return Player{
		ID:             player.ID,
		WalletAddress:  player.WalletAddress,
		SpinsRemaining: spinsRemaining,
		LastSpinAt:     player.LastSpinAt,
		TotalSpins:     player.TotalSpins,
		TotalWins:      player.TotalWins,
		Balances:       balances,
	}
}

func ConvertBalance(balance *entity.PlayerBalance, token *entity.RewardToken) Balance {
	if balance == nil {
		return Balance{}
	}

	symbol := ""
	if token != nil {
		symbol = token.Symbol
	}

	return Balance{
		TokenID:     string(balance.TokenID),
		Symbol:      symbol,
		Accumulated: balance.Accumulated,
		Claimed:     balance.Claimed,
	}
}

func ConvertSpinRecord(record *entity.SpinRecord) SpinRecord {
	if record == nil {
		return SpinRecord{}
	}

	return SpinRecord{
		ID:        record.ID,
		Segment:   string(record.Segment),
		TokenID:   string(record.TokenID),
		Amount:    record.Amount,
		IsWin:     record.IsWin,
		TxHash:    record.TxHash,
		CreatedAt: record.CreatedAt,
	}
}

func ConvertRewardToken(token *entity.RewardToken) RewardToken {
	if token == nil {
		return RewardToken{}
	}

	return RewardToken{
		TokenID:  string(token.TokenID),
		Address:  token.Address,
		Symbol:   token.Symbol,
		Decimals: token.Decimals,
	}
}
