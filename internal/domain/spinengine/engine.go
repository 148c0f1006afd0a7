package spinengine

import (
	"errors"
	"math/big"

	"github.com/spinvault/backend/internal/entity"
	"github.com/spinvault/backend/pkg/crypto"
)

// RandomSource abstracts the randomness used by the engine so tests can pin
// outcomes. The default draws from crypto/rand.
type RandomSource interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int

	// BigIntRange returns a uniform value in [a, b], both inclusive.
	BigIntRange(a, b *big.Int) *big.Int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	return crypto.RandIntn(n)
}

func (cryptoSource) BigIntRange(a, b *big.Int) *big.Int {
	return crypto.RandBigIntRange(a, b)
}

func NewCryptoSource() RandomSource {
	return cryptoSource{}
}

// SegmentWeight is one wheel segment with its relative weight. Weights do
// not need to sum to anything particular, only the ratio matters.
type SegmentWeight struct {
	Segment entity.Segment
	Weight  int
}

type WeightTable []SegmentWeight

func (t WeightTable) Validate() error {
	total := 0
	for _, w := range t {
		if w.Weight < 0 {
			return errors.New("negative segment weight")
		}
		total += w.Weight
	}

	if total <= 0 {
		return errors.New("weight table has no positive weight")
	}

	return nil
}

// pick walks the table the way a wheel walks its segments, consuming the
// drawn value until it falls inside one of them.
func (t WeightTable) pick(source RandomSource) entity.Segment {
	total := 0
	for _, w := range t {
		total += w.Weight
	}

	drawn := source.Intn(total)
	for _, w := range t {
		if drawn < w.Weight {
			return w.Segment
		}
		drawn -= w.Weight
	}

	return entity.SegmentNoWin
}

// BeginnerPolicy boosts the first spins of a new player. Tables is indexed
// by lifetime spin number (Tables[0] applies to the very first spin). Spins
// beyond the schedule use the standard table.
type BeginnerPolicy struct {
	Enabled bool
	Tables  []WeightTable
}

type Config struct {
	Standard WeightTable
	Beginner BeginnerPolicy

	// AmountMin and AmountMax bound the reward size in whole tokens,
	// inclusive on both ends.
	AmountMin uint64
	AmountMax uint64

	// TokenDecimals scales whole-token amounts into base units per token.
	TokenDecimals map[entity.TokenID]int
}

// DefaultConfig returns the production wheel layout.
func DefaultConfig() Config {
	return Config{
		Standard: WeightTable{
			{Segment: entity.SegmentNoWin, Weight: 40},
			{Segment: entity.SegmentToken1, Weight: 30},
			{Segment: entity.SegmentToken2, Weight: 20},
			{Segment: entity.SegmentToken3, Weight: 10},
		},
		Beginner: BeginnerPolicy{
			Enabled: true,
			Tables: []WeightTable{
				{
					{Segment: entity.SegmentNoWin, Weight: 10},
					{Segment: entity.SegmentToken1, Weight: 45},
					{Segment: entity.SegmentToken2, Weight: 30},
					{Segment: entity.SegmentToken3, Weight: 15},
				},
				{
					{Segment: entity.SegmentNoWin, Weight: 30},
					{Segment: entity.SegmentToken1, Weight: 35},
					{Segment: entity.SegmentToken2, Weight: 25},
					{Segment: entity.SegmentToken3, Weight: 10},
				},
				{
					{Segment: entity.SegmentToken1, Weight: 50},
					{Segment: entity.SegmentToken2, Weight: 35},
					{Segment: entity.SegmentToken3, Weight: 15},
				},
			},
		},
		AmountMin: 20,
		AmountMax: 50,
		TokenDecimals: map[entity.TokenID]int{
			entity.Token1: 18,
			entity.Token2: 18,
			entity.Token3: 18,
		},
	}
}

// PlayerState is the part of a player the engine needs to choose a table.
type PlayerState struct {
	// LifetimeSpins counts spins before the current one.
	LifetimeSpins int
}

// Outcome is a resolved spin. Amount is in token base units and nil on a
// no-win.
type Outcome struct {
	Segment entity.Segment
	TokenID entity.TokenID
	Amount  *big.Int
	IsWin   bool
}

type Engine struct {
	cfg    Config
	source RandomSource
}

func NewEngine(cfg Config, source RandomSource) (*Engine, error) {
	if err := cfg.Standard.Validate(); err != nil {
		return nil, err
	}

	for _, table := range cfg.Beginner.Tables {
		if err := table.Validate(); err != nil {
			return nil, err
		}
	}

	if cfg.AmountMin == 0 || cfg.AmountMax < cfg.AmountMin {
		return nil, errors.New("invalid reward amount bounds")
	}

	if source == nil {
		source = NewCryptoSource()
	}

	return &Engine{cfg: cfg, source: source}, nil
}

func (e *Engine) table(state PlayerState) WeightTable {
	if e.cfg.Beginner.Enabled && state.LifetimeSpins < len(e.cfg.Beginner.Tables) {
		return e.cfg.Beginner.Tables[state.LifetimeSpins]
	}

	return e.cfg.Standard
}

// Spin resolves one spin for the given player state.
func (e *Engine) Spin(state PlayerState) Outcome {
	segment := e.table(state).pick(e.source)
	tokenID, ok := entity.TokenOf(segment)
	if !ok {
		return Outcome{Segment: entity.SegmentNoWin}
	}

	return Outcome{
		Segment: segment,
		TokenID: tokenID,
		Amount:  e.rollAmount(tokenID),
		IsWin:   true,
	}
}

// rollAmount draws a whole-token amount in [AmountMin, AmountMax] and scales
// it by the token's decimals.
func (e *Engine) rollAmount(tokenID entity.TokenID) *big.Int {
	min := new(big.Int).SetUint64(e.cfg.AmountMin)
	max := new(big.Int).SetUint64(e.cfg.AmountMax)

	amount := e.source.BigIntRange(min, max)

	decimals := e.cfg.TokenDecimals[tokenID]
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return amount.Mul(amount, scale)
}
