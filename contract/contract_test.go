package contract_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nova_token/contract"
	"nova_token/host"
)

const (
	ownerAddr contract.Address = "owner"
	teamAddr  contract.Address = "team"
	selfAddr  contract.Address = "contract.nova"

	alice contract.Address = "alice"
	bob   contract.Address = "bob"
	carol contract.Address = "carol"
)

// env assembles a contract against fresh in-memory host primitives with a
// manual clock and captured events.
type env struct {
	t      *testing.T
	c      *contract.Contract
	state  *host.MemState
	ledger *host.Ledger
	bank   *host.Bank
	now    int64
	events []string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		t:      t,
		state:  host.NewMemState(),
		ledger: host.NewLedger(),
		bank:   host.NewBank(),
		now:    1_700_000_000,
	}
	sink := contract.EventSinkFunc(func(line string) {
		e.events = append(e.events, line)
	})
	e.c = contract.New(e.state, e.ledger, e.bank, sink, selfAddr)
	require.NoError(t, e.c.Initialize(e.ctx(ownerAddr), ownerAddr, teamAddr))
	return e
}

func (e *env) ctx(caller contract.Address) contract.CallCtx {
	return contract.CallCtx{Caller: caller, Now: e.now, TxID: "tx"}
}

func (e *env) advance(seconds int64) { e.now += seconds }

// fund credits native whole units to an account.
func (e *env) fund(addr contract.Address, units int64) {
	e.bank.Deposit(addr, native(units))
}

// buy purchases with `units` native whole units and no referrer.
func (e *env) buy(addr contract.Address, units int64) {
	e.t.Helper()
	require.NoError(e.t, e.c.Purchase(e.ctx(addr), native(units), nil))
}

func (e *env) hasEvent(prefix string) bool {
	for _, line := range e.events {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (e *env) countEvents(prefix string) int {
	n := 0
	for _, line := range e.events {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// native converts whole native units into base units (same 18-decimal scale
// as the token).
func native(units int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(units), contract.Unit)
}

func TestInitializeMintsCirculatingPools(t *testing.T) {
	e := newEnv(t)

	// Sale + ecosystem + liquidity, team pool not yet.
	want := contract.Tokens(85_000_000)
	require.Zero(t, want.Cmp(e.ledger.BalanceOf(selfAddr)))
	require.Zero(t, want.Cmp(e.ledger.TotalSupply()))
	require.Equal(t, contract.StagePrivateSale, e.c.Stage())
	require.True(t, e.hasEvent("init|"))
}

func TestInitializeIsOneShot(t *testing.T) {
	e := newEnv(t)
	err := e.c.Initialize(e.ctx(ownerAddr), ownerAddr, teamAddr)
	require.ErrorIs(t, err, contract.ErrAlreadyInitialized)
	require.ErrorIs(t, err, contract.ErrStateConflict)
}

func TestInitializeRejectsZeroAddresses(t *testing.T) {
	state := host.NewMemState()
	c := contract.New(state, host.NewLedger(), host.NewBank(), nil, selfAddr)
	ctx := contract.CallCtx{Caller: ownerAddr, Now: 1}
	require.ErrorIs(t, c.Initialize(ctx, contract.ZeroAddress, teamAddr), contract.ErrInvalidInput)
	require.ErrorIs(t, c.Initialize(ctx, ownerAddr, contract.ZeroAddress), contract.ErrInvalidInput)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	c := contract.New(host.NewMemState(), host.NewLedger(), host.NewBank(), nil, selfAddr)
	ctx := contract.CallCtx{Caller: alice, Now: 1}

	require.ErrorIs(t, c.Refund(ctx), contract.ErrNotInitialized)
	require.ErrorIs(t, c.Unstake(ctx), contract.ErrNotInitialized)
	require.ErrorIs(t, c.ClaimTeamTokens(ctx), contract.ErrNotInitialized)
	_, err := c.CreateProposal(ctx, "anything")
	require.ErrorIs(t, err, contract.ErrNotInitialized)
	_, err = c.GetStatus()
	require.ErrorIs(t, err, contract.ErrNotInitialized)
}
