package entity

// SpinRecord is the append-only history of every spin, winning or not.
type SpinRecord struct {
	Base

	PlayerID string `gorm:"index"`
	Player   Player `gorm:"foreignKey:PlayerID"`

	Segment Segment
	TokenID TokenID
	Amount  string
	IsWin   bool

	// TransferAttempted flips to true exactly once before the auto transfer
	// is submitted, so a retried spin never double-pays.
	TransferAttempted bool
	TxHash            string
}
