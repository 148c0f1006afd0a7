package entity

// PlayerBalance tracks per-token winnings. Amounts are base-unit big integers
// stored as decimal strings to avoid precision loss in the database.
type PlayerBalance struct {
	Base

	PlayerID string `gorm:"uniqueIndex:idx_player_token"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	TokenID TokenID `gorm:"uniqueIndex:idx_player_token"`

	// Accumulated is won but not yet paid out. Claimed has been transferred
	// on-chain or covered by an issued claim signature.
	Accumulated string
	Claimed     string
}
