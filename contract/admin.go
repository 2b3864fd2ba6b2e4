package contract

import (
	"fmt"
	"math/big"
)

// LockLiquidity moves the entire liquidity pool to the given pool account in
// one shot. The locked latch makes any second call fail; there is no unlock.
func (c *Contract) LockLiquidity(ctx CallCtx, poolAddr Address) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	if err := c.requireAdmin(ctx.Caller); err != nil {
		return err
	}
	if poolAddr.IsZero() {
		return fmt.Errorf("pool address required: %w", ErrInvalidInput)
	}
	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	if t.LiquidityLocked {
		return ErrLiquidityLocked
	}
	// Gate before any write: sale issuance may already have eaten into the
	// combined pool, and a lock that cannot be funded must leave no latch
	// behind.
	if err := checkIssuance(t, LiquidityPool); err != nil {
		return err
	}

	t.LiquidityLocked = true
	recordIssuance(t, LiquidityPool)
	c.saveTotals(t)

	if err := c.ledger.Transfer(c.addr, poolAddr, LiquidityPool); err != nil {
		return err
	}

	c.emitLiquidityLock(ctx, LiquidityPool)
	return nil
}

// DistributeEcosystemTokens pays grants out of the ecosystem pool. The live
// remaining balance bounds every grant; the pool only shrinks.
func (c *Contract) DistributeEcosystemTokens(ctx CallCtx, recipient Address, amount *big.Int) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	if err := c.requireAdmin(ctx.Caller); err != nil {
		return err
	}
	if recipient.IsZero() {
		return fmt.Errorf("recipient required: %w", ErrInvalidInput)
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive: %w", ErrInvalidInput)
	}
	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	if amount.Cmp(t.EcosystemRemaining) > 0 {
		return ErrInsufficientPool
	}
	if err := checkIssuance(t, amount); err != nil {
		return err
	}

	t.EcosystemRemaining = new(big.Int).Sub(t.EcosystemRemaining, amount)
	recordIssuance(t, amount)
	c.saveTotals(t)

	if err := c.ledger.Transfer(c.addr, recipient, amount); err != nil {
		return err
	}

	c.emitEcosystem(ctx, recipient, amount, t.EcosystemRemaining)
	return nil
}

// Burn destroys tokens from the caller's own balance. Burned tokens leave
// circulation for good; they do not re-open allocation headroom.
func (c *Contract) Burn(ctx CallCtx, amount *big.Int) error {
	if _, err := c.loadConfig(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("burn amount must be positive: %w", ErrInvalidInput)
	}
	if err := c.ledger.Burn(ctx.Caller, amount); err != nil {
		return err
	}
	c.emitBurn(ctx, amount)
	return nil
}
