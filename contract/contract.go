package contract

import (
	"fmt"
	"math/big"
	"strconv"
)

// Contract is the NOVA token-economics state machine. All mutating methods
// run inside the host's atomic-call boundary: the host serializes calls and
// discards nothing, so every method must either complete its bookkeeping or
// return an error before the first write.
type Contract struct {
	state  State
	ledger Ledger
	bank   Bank
	events EventSink

	// addr is the contract's own ledger account; the sale, ecosystem and
	// liquidity pools live there between issuance events, and staked
	// principal is held there in custody.
	addr Address

	// guard trips when a callback re-enters a mutating operation before the
	// outer one finished its bookkeeping.
	guard bool
}

// New wires the state machine to its host primitives. selfAddr is the ledger
// account the contract controls.
func New(state State, ledger Ledger, bank Bank, events EventSink, selfAddr Address) *Contract {
	if events == nil {
		events = EventSinkFunc(func(string) {})
	}
	return &Contract{
		state:  state,
		ledger: ledger,
		bank:   bank,
		events: events,
		addr:   selfAddr,
	}
}

// Initialize is the one-shot deployment step: it mints the sale, ecosystem
// and liquidity pools to the contract account, fixes the team vesting clock
// and opens the private sale. The team pool stays unminted until claimed.
func (c *Contract) Initialize(ctx CallCtx, owner, team Address) error {
	if c.initialized() {
		return ErrAlreadyInitialized
	}
	if owner.IsZero() || team.IsZero() {
		return fmt.Errorf("owner and team address required: %w", ErrInvalidInput)
	}

	circulating := new(big.Int).Add(SalePool, EcosystemPool)
	circulating.Add(circulating, LiquidityPool)
	if err := c.ledger.Mint(c.addr, circulating); err != nil {
		return err
	}

	cfg := &configRecord{
		Owner:      owner,
		Team:       team,
		DeployedAt: ctx.Now,
		UnlockAt:   ctx.Now + VestingDelaySeconds,
	}
	c.state.Set(configKey(), encodeConfig(cfg))

	c.saveTotals(&totalsRecord{
		Raised:             new(big.Int),
		Refunded:           new(big.Int),
		Issued:             new(big.Int),
		EcosystemRemaining: new(big.Int).Set(EcosystemPool),
	})
	c.state.Set(stageKey(), strconv.Itoa(int(StagePrivateSale)))

	c.emitInit(ctx, owner, team)
	return nil
}

// SelfAddress returns the contract's own ledger account.
func (c *Contract) SelfAddress() Address { return c.addr }

func (c *Contract) initialized() bool {
	ptr := c.state.Get(configKey())
	return ptr != nil && *ptr != ""
}

// loadConfig aborts callers with ErrNotInitialized before any operation can
// touch uninitialized state.
func (c *Contract) loadConfig() (*configRecord, error) {
	ptr := c.state.Get(configKey())
	if ptr == nil || *ptr == "" {
		return nil, ErrNotInitialized
	}
	cfg, err := decodeConfig(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt config record: %w", err)
	}
	return cfg, nil
}

// requireAdmin is the access-gate check: the deployment owner is the sole
// admin.
func (c *Contract) requireAdmin(caller Address) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Owner != caller {
		return fmt.Errorf("caller %s is not the admin: %w", caller, ErrUnauthorized)
	}
	return nil
}

// enter acquires the transient reentrancy guard for operations that perform
// external transfer-like effects.
func (c *Contract) enter() error {
	if c.guard {
		return ErrReentrantCall
	}
	c.guard = true
	return nil
}

func (c *Contract) exit() { c.guard = false }

// -----------------------------------------------------------------------------
// Shared state accessors
// -----------------------------------------------------------------------------

func (c *Contract) loadTotals() (*totalsRecord, error) {
	ptr := c.state.Get(totalsKey())
	if ptr == nil || *ptr == "" {
		return nil, ErrNotInitialized
	}
	t, err := decodeTotals(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt totals record: %w", err)
	}
	return t, nil
}

func (c *Contract) saveTotals(t *totalsRecord) {
	c.state.Set(totalsKey(), encodeTotals(t))
}

func (c *Contract) stage() SaleStage {
	ptr := c.state.Get(stageKey())
	if ptr == nil || *ptr == "" {
		return StagePrivateSale
	}
	n, err := strconv.Atoi(*ptr)
	if err != nil {
		return StagePrivateSale
	}
	return SaleStage(n)
}

func (c *Contract) setStage(s SaleStage) {
	c.state.Set(stageKey(), strconv.Itoa(int(s)))
}

// contributionOf returns the recorded native-currency contribution, zero when
// the caller never purchased or has refunded.
func (c *Contract) contributionOf(addr Address) *big.Int {
	ptr := c.state.Get(contributionKey(addr))
	if ptr == nil || *ptr == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(*ptr, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (c *Contract) setContribution(addr Address, amount *big.Int) {
	c.state.Set(contributionKey(addr), amount.String())
}

func (c *Contract) getCount(key string) uint64 {
	ptr := c.state.Get(key)
	if ptr == nil || *ptr == "" {
		return 0
	}
	n, _ := strconv.ParseUint(*ptr, 10, 64)
	return n
}

func (c *Contract) setCount(key string, n uint64) {
	c.state.Set(key, strconv.FormatUint(n, 10))
}
