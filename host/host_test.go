package host

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nova_token/contract"
)

func TestMemStateRoundTrip(t *testing.T) {
	s := NewMemState()
	require.Nil(t, s.Get("missing"))

	s.Set("k", "v1")
	got := s.Get("k")
	require.NotNil(t, got)
	require.Equal(t, "v1", *got)

	s.Set("k", "v2")
	require.Equal(t, "v2", *s.Get("k"))

	s.Delete("k")
	require.Nil(t, s.Get("k"))
	require.Zero(t, s.Len())
}

func TestLedgerTransfer(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("a", big.NewInt(100)))

	require.NoError(t, l.Transfer("a", "b", big.NewInt(40)))
	require.Zero(t, big.NewInt(60).Cmp(l.BalanceOf("a")))
	require.Zero(t, big.NewInt(40).Cmp(l.BalanceOf("b")))

	err := l.Transfer("a", "b", big.NewInt(61))
	require.ErrorIs(t, err, contract.ErrInsufficientBalance)
	require.Zero(t, big.NewInt(60).Cmp(l.BalanceOf("a")))

	require.ErrorIs(t, l.Transfer("a", "b", big.NewInt(-1)), contract.ErrInvalidInput)
}

func TestLedgerSupplyTracksMintAndBurn(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("a", big.NewInt(100)))
	require.NoError(t, l.Burn("a", big.NewInt(30)))
	require.Zero(t, big.NewInt(70).Cmp(l.TotalSupply()))

	require.ErrorIs(t, l.Burn("a", big.NewInt(71)), contract.ErrInsufficientBalance)
	require.ErrorIs(t, l.Burn("nobody", big.NewInt(1)), contract.ErrInsufficientBalance)
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Mint("a", big.NewInt(100)))

	l.BalanceOf("a").SetInt64(0)
	require.Zero(t, big.NewInt(100).Cmp(l.BalanceOf("a")))
}

func TestBankDrawAndPayout(t *testing.T) {
	b := NewBank()
	b.Deposit("a", big.NewInt(50))

	require.NoError(t, b.Draw("a", big.NewInt(30)))
	require.Zero(t, big.NewInt(20).Cmp(b.AccountBalance("a")))
	require.Zero(t, big.NewInt(30).Cmp(b.VaultBalance()))

	require.ErrorIs(t, b.Draw("a", big.NewInt(21)), contract.ErrInsufficientBalance)

	require.NoError(t, b.Payout("b", big.NewInt(10)))
	require.Zero(t, big.NewInt(10).Cmp(b.AccountBalance("b")))
	require.Zero(t, big.NewInt(20).Cmp(b.VaultBalance()))

	require.ErrorIs(t, b.Payout("b", big.NewInt(21)), contract.ErrInsufficientBalance)
}

func TestNodeSerializesCallsWithClock(t *testing.T) {
	clock := NewManualClock(1000)
	var lines []string
	node := NewNode(
		WithClock(clock.Now),
		WithEventSink(contract.EventSinkFunc(func(l string) { lines = append(lines, l) })),
	)

	err := node.Call("owner", func(c *contract.Contract, ctx contract.CallCtx) error {
		require.Equal(t, contract.Address("owner"), ctx.Caller)
		require.Equal(t, int64(1000), ctx.Now)
		require.NotEmpty(t, ctx.TxID)
		return c.Initialize(ctx, "owner", "team")
	})
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	clock.Advance(5)
	err = node.Call("owner", func(c *contract.Contract, ctx contract.CallCtx) error {
		require.Equal(t, int64(1005), ctx.Now)
		return nil
	})
	require.NoError(t, err)
}
