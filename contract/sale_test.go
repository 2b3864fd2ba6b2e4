package contract_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nova_token/contract"
	"nova_token/host"
)

func TestPurchaseBaseRate(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)

	// 1 native unit at 0.001 native/token buys 1000 tokens.
	e.buy(alice, 1)

	require.Zero(t, contract.Tokens(1000).Cmp(e.ledger.BalanceOf(alice)))
	require.Zero(t, native(1).Cmp(e.c.ContributionOf(alice)))
	require.Zero(t, native(1).Cmp(e.bank.VaultBalance()))
	require.True(t, e.hasEvent("buy|alice|"))
}

func TestPurchaseReferralBonus(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)

	ref := bob
	require.NoError(t, e.c.Purchase(e.ctx(alice), native(1), &ref))

	// 1000 tokens + 5% bonus.
	require.Zero(t, contract.Tokens(1050).Cmp(e.ledger.BalanceOf(alice)))
	require.Equal(t, bob, e.c.ReferrerOf(alice))
}

func TestPurchaseSelfReferralIgnored(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)

	ref := alice
	require.NoError(t, e.c.Purchase(e.ctx(alice), native(1), &ref))

	require.Zero(t, contract.Tokens(1000).Cmp(e.ledger.BalanceOf(alice)))
	require.Equal(t, contract.ZeroAddress, e.c.ReferrerOf(alice))
}

func TestPurchaseReferralLastWriteWins(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)

	ref := bob
	require.NoError(t, e.c.Purchase(e.ctx(alice), native(1), &ref))
	ref = carol
	require.NoError(t, e.c.Purchase(e.ctx(alice), native(1), &ref))

	require.Equal(t, carol, e.c.ReferrerOf(alice))
}

func TestPurchaseRejectsNonPositivePayment(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)

	require.ErrorIs(t, e.c.Purchase(e.ctx(alice), nil, nil), contract.ErrInvalidInput)
	require.ErrorIs(t, e.c.Purchase(e.ctx(alice), big.NewInt(0), nil), contract.ErrInvalidInput)
	require.ErrorIs(t, e.c.Purchase(e.ctx(alice), big.NewInt(-5), nil), contract.ErrInvalidInput)
}

func TestPurchaseLimitBoundary(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 2000)

	// 1000 native units buys exactly the 1,000,000-token cap.
	e.buy(alice, 1000)
	require.Zero(t, contract.MaxPurchase.Cmp(e.ledger.BalanceOf(alice)))

	// The smallest further purchase overflows the cap.
	err := e.c.Purchase(e.ctx(alice), big.NewInt(1), nil)
	require.ErrorIs(t, err, contract.ErrPurchaseLimit)
	require.ErrorIs(t, err, contract.ErrLimitExceeded)

	// Contribution only reflects the successful purchase.
	require.Zero(t, native(1000).Cmp(e.c.ContributionOf(alice)))
}

func TestPurchaseFailsWithoutFunds(t *testing.T) {
	e := newEnv(t)
	require.ErrorIs(t, e.c.Purchase(e.ctx(alice), native(1), nil), contract.ErrInsufficientBalance)
	require.Zero(t, e.c.ContributionOf(alice).Sign())
	require.Zero(t, e.ledger.BalanceOf(alice).Sign())
}

func TestPurchaseAfterSaleEnded(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	require.NoError(t, e.c.EndSale(e.ctx(ownerAddr)))

	err := e.c.Purchase(e.ctx(alice), native(1), nil)
	require.ErrorIs(t, err, contract.ErrSaleEnded)
	require.ErrorIs(t, err, contract.ErrStateConflict)
}

// reachSoftCap spreads the 5000-native-unit threshold over five buyers so no
// single balance breaks the purchase cap.
func reachSoftCap(e *env) {
	buyers := []contract.Address{alice, bob, carol, "dave", "erin"}
	for _, b := range buyers {
		e.fund(b, 1000)
		e.buy(b, 1000)
	}
}

func TestSoftCapLatch(t *testing.T) {
	e := newEnv(t)
	reachSoftCap(e)

	st, err := e.c.GetStatus()
	require.NoError(t, err)
	require.True(t, st.SoftCapReached)
	require.Zero(t, native(5000).Cmp(st.TotalRaised))
	require.Equal(t, 1, e.countEvents("cap|"))

	// The latch is monotonic: refunds are closed for good.
	require.ErrorIs(t, e.c.Refund(e.ctx(alice)), contract.ErrRefundClosed)

	// Further purchases do not re-emit the latch event.
	e.fund("frank", 10)
	e.buy("frank", 1)
	require.Equal(t, 1, e.countEvents("cap|"))
}

func TestRefundSymmetry(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 3)

	require.NoError(t, e.c.Refund(e.ctx(alice)))

	require.Zero(t, e.c.ContributionOf(alice).Sign())
	require.Zero(t, e.ledger.BalanceOf(alice).Sign())
	require.Zero(t, native(10).Cmp(e.bank.AccountBalance(alice)))
	require.Zero(t, e.bank.VaultBalance().Sign())

	st, err := e.c.GetStatus()
	require.NoError(t, err)
	require.Zero(t, native(3).Cmp(st.TotalRaised))
	require.Zero(t, native(3).Cmp(st.TotalRefunded))
	require.True(t, e.hasEvent("rfnd|alice|"))
}

func TestRefundWithNothingToRefund(t *testing.T) {
	e := newEnv(t)
	require.ErrorIs(t, e.c.Refund(e.ctx(alice)), contract.ErrNothingToRefund)

	// A completed refund resets the contribution; a second one fails too.
	e.fund(alice, 10)
	e.buy(alice, 1)
	require.NoError(t, e.c.Refund(e.ctx(alice)))
	require.ErrorIs(t, e.c.Refund(e.ctx(alice)), contract.ErrNothingToRefund)
}

func TestRefundReopensAllocationHeadroom(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	before, err := e.c.Allocation()
	require.NoError(t, err)
	require.Zero(t, contract.Tokens(1000).Cmp(before.PoolIssued))

	require.NoError(t, e.c.Refund(e.ctx(alice)))

	after, err := e.c.Allocation()
	require.NoError(t, err)
	require.Zero(t, after.PoolIssued.Sign())
}

func TestWithdrawRequiresSoftCap(t *testing.T) {
	e := newEnv(t)
	e.fund(alice, 10)
	e.buy(alice, 1)

	err := e.c.Withdraw(e.ctx(ownerAddr))
	require.ErrorIs(t, err, contract.ErrSoftCapNotReached)
}

func TestWithdrawSweepsVaultIdempotently(t *testing.T) {
	e := newEnv(t)
	reachSoftCap(e)

	require.ErrorIs(t, e.c.Withdraw(e.ctx(alice)), contract.ErrUnauthorized)

	require.NoError(t, e.c.Withdraw(e.ctx(ownerAddr)))
	require.Zero(t, e.bank.VaultBalance().Sign())
	require.Zero(t, native(5000).Cmp(e.bank.AccountBalance(ownerAddr)))

	// Nothing left; a repeat call still succeeds.
	require.NoError(t, e.c.Withdraw(e.ctx(ownerAddr)))
	require.Zero(t, native(5000).Cmp(e.bank.AccountBalance(ownerAddr)))
}

func TestSetSaleStage(t *testing.T) {
	e := newEnv(t)

	require.ErrorIs(t, e.c.SetSaleStage(e.ctx(alice), contract.StagePublicSale), contract.ErrUnauthorized)

	require.NoError(t, e.c.SetSaleStage(e.ctx(ownerAddr), contract.StagePublicSale))
	require.Equal(t, contract.StagePublicSale, e.c.Stage())

	// Backward moves are allowed.
	require.NoError(t, e.c.SetSaleStage(e.ctx(ownerAddr), contract.StagePreSale))
	require.Equal(t, contract.StagePreSale, e.c.Stage())
}

func TestEndedStageIsTerminal(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.c.EndSale(e.ctx(ownerAddr)))
	require.Equal(t, contract.StageEnded, e.c.Stage())

	// EndSale again is fine, but no stage leaves Ended.
	require.NoError(t, e.c.EndSale(e.ctx(ownerAddr)))
	err := e.c.SetSaleStage(e.ctx(ownerAddr), contract.StagePublicSale)
	require.ErrorIs(t, err, contract.ErrSaleEnded)
}

func TestReentrantPurchaseRejected(t *testing.T) {
	state := host.NewMemState()
	ledger := host.NewLedger()
	bank := host.NewBank()

	var c *contract.Contract
	var reentrant error
	fired := false
	// A sink that calls back into the contract while the outer purchase
	// still holds the guard.
	sink := contract.EventSinkFunc(func(line string) {
		if !fired && len(line) > 4 && line[:4] == "buy|" {
			fired = true
			reentrant = c.Purchase(contract.CallCtx{Caller: alice, Now: 1}, native(1), nil)
		}
	})
	c = contract.New(state, ledger, bank, sink, selfAddr)
	require.NoError(t, c.Initialize(contract.CallCtx{Caller: ownerAddr, Now: 1}, ownerAddr, teamAddr))

	bank.Deposit(alice, native(10))
	require.NoError(t, c.Purchase(contract.CallCtx{Caller: alice, Now: 1}, native(1), nil))
	require.True(t, fired)
	require.ErrorIs(t, reentrant, contract.ErrReentrantCall)
}
