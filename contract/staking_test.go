package contract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nova_token/contract"
)

func TestStakeMovesTokensIntoCustody(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(400)))

	require.Zero(t, contract.Tokens(600).Cmp(e.ledger.BalanceOf(alice)))
	info, err := e.c.StakeOf(alice)
	require.NoError(t, err)
	require.Zero(t, contract.Tokens(400).Cmp(info.Amount))
	require.Equal(t, e.now, info.Since)
}

func TestStakeRejectsBadAmounts(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.ErrorIs(t, e.c.Stake(e.ctx(alice), nil), contract.ErrInvalidInput)
	require.ErrorIs(t, e.c.Stake(e.ctx(alice), contract.Tokens(0)), contract.ErrInvalidInput)
	require.ErrorIs(t, e.c.Stake(e.ctx(alice), contract.Tokens(5000)), contract.ErrInsufficientBalance)
}

func TestUnstakeZeroElapsedRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(1000)))
	require.NoError(t, e.c.Unstake(e.ctx(alice)))

	// Same timestamp, zero interest: the principal comes back exactly.
	require.Zero(t, contract.Tokens(1000).Cmp(e.ledger.BalanceOf(alice)))
	info, err := e.c.StakeOf(alice)
	require.NoError(t, err)
	require.Nil(t, info)
}

func TestUnstakeFullYearReward(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(1000)))
	e.advance(contract.YearSeconds)
	require.NoError(t, e.c.Unstake(e.ctx(alice)))

	// 10% simple interest on 1000 tokens.
	require.Zero(t, contract.Tokens(1100).Cmp(e.ledger.BalanceOf(alice)))
	require.True(t, e.hasEvent("ustk|alice|"))
}

func TestUnstakeHalfYearFloors(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(1000)))
	e.advance(contract.YearSeconds / 2)
	require.NoError(t, e.c.Unstake(e.ctx(alice)))

	// amount * 10 * (year/2) / (100 * year), floor division on base units.
	want := contract.Tokens(1050)
	got := e.ledger.BalanceOf(alice)
	require.Zero(t, want.Cmp(got), "want %s got %s", want, got)
}

func TestStakeTopUpResetsClock(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(100)))
	e.advance(contract.YearSeconds / 2)
	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(100)))

	info, err := e.c.StakeOf(alice)
	require.NoError(t, err)
	require.Zero(t, contract.Tokens(200).Cmp(info.Amount))
	require.Equal(t, e.now, info.Since)

	// The half year before the top-up is forfeited.
	e.advance(contract.YearSeconds)
	require.NoError(t, e.c.Unstake(e.ctx(alice)))
	require.Zero(t, contract.Tokens(1020).Cmp(e.ledger.BalanceOf(alice)))
}

func TestUnstakeWithoutStake(t *testing.T) {
	e := newEnv(t)
	err := e.c.Unstake(e.ctx(alice))
	require.ErrorIs(t, err, contract.ErrNothingStaked)
	require.ErrorIs(t, err, contract.ErrStateConflict)
}

func TestStakingRewardCountsAsIssuance(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	before, err := e.c.Allocation()
	require.NoError(t, err)

	require.NoError(t, e.c.Stake(e.ctx(alice), contract.Tokens(1000)))
	e.advance(contract.YearSeconds)
	require.NoError(t, e.c.Unstake(e.ctx(alice)))

	after, err := e.c.Allocation()
	require.NoError(t, err)
	delta := after.PoolIssued.Sub(after.PoolIssued, before.PoolIssued)
	require.Zero(t, contract.Tokens(100).Cmp(delta))
}
