package contract

import "math/big"

// Token parameters. Amounts are big integers in 18-decimal base units; whole
// token counts below are scaled through Tokens.
const (
	totalSupplyTokens = 100_000_000

	salePoolTokens      = 50_000_000
	ecosystemPoolTokens = 20_000_000
	liquidityPoolTokens = 15_000_000
	teamPoolTokens      = 15_000_000

	maxPurchaseTokens = 1_000_000
	softCapTokens     = 5_000_000

	// ReferralBonusPercent is added to the token amount of a purchase that
	// names a valid referrer.
	ReferralBonusPercent = 5

	// RewardRatePercent is the simple-interest staking rate per YearSeconds.
	RewardRatePercent = 10
)

const (
	daySeconds = 24 * 60 * 60

	// YearSeconds is the staking accrual denominator.
	YearSeconds = 365 * daySeconds

	// VestingDelaySeconds locks the team pool after deployment.
	VestingDelaySeconds = 180 * daySeconds

	// VotingDurationSeconds is the open window of every proposal.
	VotingDurationSeconds = 7 * daySeconds
)

var (
	// Unit is one whole token in base units (10^18).
	Unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// TokenPrice is the native base-unit price of one whole token (10^15,
	// i.e. 0.001 native units per token).
	TokenPrice = new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil)

	// TotalSupply is the fixed cap across every pool.
	TotalSupply = Tokens(totalSupplyTokens)

	SalePool      = Tokens(salePoolTokens)
	EcosystemPool = Tokens(ecosystemPoolTokens)
	LiquidityPool = Tokens(liquidityPoolTokens)
	TeamPool      = Tokens(teamPoolTokens)

	// MaxPurchase caps a holder's post-purchase balance.
	MaxPurchase = Tokens(maxPurchaseTokens)

	// SoftCapThreshold is the native amount raised at which the soft-cap
	// latch flips: softCapTokens * TokenPrice / Unit collapses to
	// softCapTokens whole tokens priced in native base units.
	SoftCapThreshold = new(big.Int).Mul(big.NewInt(softCapTokens), TokenPrice)
)

// Tokens converts a whole-token count into base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Unit)
}

// combinedPool is the issuance ceiling shared by the sale, ecosystem and
// liquidity pools.
func combinedPool() *big.Int {
	sum := new(big.Int).Add(SalePool, EcosystemPool)
	return sum.Add(sum, LiquidityPool)
}
