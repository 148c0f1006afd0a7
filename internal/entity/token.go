package entity

import "github.com/spinvault/backend/pkg/enum"

// TokenID identifies one of the reward tokens the wheel can pay out. The set
// is closed, adding a token requires a new enum value and a vault deployment.
type TokenID string

var (
	Token1 = enum.New(TokenID("token1"))
	Token2 = enum.New(TokenID("token2"))
	Token3 = enum.New(TokenID("token3"))
)

// Segment is the wheel segment a spin lands on.
type Segment string

var (
	SegmentNoWin  = enum.New(Segment("no_win"))
	SegmentToken1 = enum.New(Segment("token1"))
	SegmentToken2 = enum.New(Segment("token2"))
	SegmentToken3 = enum.New(Segment("token3"))
)

// TokenOf maps a winning segment to its reward token. It returns false for
// the no-win segment.
func TokenOf(segment Segment) (TokenID, bool) {
	switch segment {
	case SegmentToken1:
		return Token1, true
	case SegmentToken2:
		return Token2, true
	case SegmentToken3:
		return Token3, true
	}

	return "", false
}

// SegmentOf is the inverse of TokenOf.
func SegmentOf(tokenID TokenID) Segment {
	switch tokenID {
	case Token1:
		return SegmentToken1
	case Token2:
		return SegmentToken2
	case Token3:
		return SegmentToken3
	}

	return SegmentNoWin
}

// RewardToken is an on-chain token the vault can transfer. Address points at
// the ERC-20 contract, Decimals is its decimals() value.
type RewardToken struct {
	Base

	TokenID  TokenID `gorm:"uniqueIndex"`
	Address  string
	Symbol   string
	Decimals int
	Active   bool
}
