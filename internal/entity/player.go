package entity

import "time"

type Player struct {
	Base

	WalletAddress string `gorm:"uniqueIndex"`

	// SpinsUsedToday counts spins since the UTC midnight before LastSpinAt.
	// It is only meaningful together with LastSpinAt.
	SpinsUsedToday int
	LastSpinAt     time.Time

	TotalSpins int
	TotalWins  int
}
