package entity

// IssuedClaim records every claim signature handed out. The vault contract
// enforces nonce ordering on redemption; this table keeps issuance ahead of
// it, the next nonce never falls back below an outstanding unexpired claim.
type IssuedClaim struct {
	Base

	WalletAddress string `gorm:"index"`
	TokenID       TokenID
	Amount        string
	Nonce         uint64
	Deadline      int64
	Signature     string
}
