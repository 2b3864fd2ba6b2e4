package contract

import (
	"fmt"
	"math/big"
)

// Fundraising engine: the sale stage machine plus purchase, refund and
// withdrawal. Ended is terminal; purchases are allowed in every other stage.

// Purchase converts a native-currency payment into tokens at TokenPrice,
// applies the referral bonus when a valid referrer is named, and enforces the
// per-address concentration cap against the post-purchase balance. The first
// payment that pushes total raised across SoftCapThreshold latches the
// soft-cap flag.
func (c *Contract) Purchase(ctx CallCtx, paid *big.Int, referrer *Address) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	if paid == nil || paid.Sign() <= 0 {
		return fmt.Errorf("payment must be positive: %w", ErrInvalidInput)
	}
	if c.stage() == StageEnded {
		return ErrSaleEnded
	}
	t, err := c.loadTotals()
	if err != nil {
		return err
	}

	// tokensToBuy = paid * Unit / TokenPrice, floor division.
	tokens := new(big.Int).Mul(paid, Unit)
	tokens.Quo(tokens, TokenPrice)

	referred := false
	if referrer != nil && !referrer.IsZero() && *referrer != ctx.Caller {
		bonus := new(big.Int).Mul(tokens, big.NewInt(ReferralBonusPercent))
		bonus.Quo(bonus, big.NewInt(100))
		tokens.Add(tokens, bonus)
		referred = true
	}

	// Concentration cap against the balance after the purchase, so tokens
	// moved away (stakes, transfers) re-open headroom.
	after := new(big.Int).Add(c.ledger.BalanceOf(ctx.Caller), tokens)
	if after.Cmp(MaxPurchase) > 0 {
		return ErrPurchaseLimit
	}
	if err := checkIssuance(t, tokens); err != nil {
		return err
	}

	// Pull the payment before crediting anything; a failed draw leaves no
	// state behind.
	if err := c.bank.Draw(ctx.Caller, paid); err != nil {
		return err
	}

	if referred {
		// Last-write-wins: a later purchase naming a different referrer
		// overwrites the stored link.
		c.state.Set(referralKey(ctx.Caller), referrer.String())
	}

	contribution := c.contributionOf(ctx.Caller)
	c.setContribution(ctx.Caller, contribution.Add(contribution, paid))

	t.Raised = new(big.Int).Add(t.Raised, paid)
	recordIssuance(t, tokens)

	crossed := false
	if !t.SoftCap && t.Raised.Cmp(SoftCapThreshold) >= 0 {
		t.SoftCap = true
		crossed = true
	}
	c.saveTotals(t)

	if err := c.ledger.Transfer(c.addr, ctx.Caller, tokens); err != nil {
		return err
	}

	c.emitPurchase(ctx, paid, tokens, referred)
	if crossed {
		c.emitSoftCap(ctx, t.Raised)
	}
	return nil
}

// Refund undoes a contribution while the soft cap is still unreached: the
// caller's entire current token balance goes back to the pool and the
// recorded native contribution is repaid in full.
func (c *Contract) Refund(ctx CallCtx) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	if t.SoftCap {
		return ErrRefundClosed
	}
	contribution := c.contributionOf(ctx.Caller)
	if contribution.Sign() == 0 {
		return ErrNothingToRefund
	}

	balance := c.ledger.BalanceOf(ctx.Caller)

	c.setContribution(ctx.Caller, new(big.Int))
	t.Refunded = new(big.Int).Add(t.Refunded, contribution)
	recordReturn(t, balance)
	c.saveTotals(t)

	if balance.Sign() > 0 {
		if err := c.ledger.Transfer(ctx.Caller, c.addr, balance); err != nil {
			return err
		}
	}
	if err := c.bank.Payout(ctx.Caller, contribution); err != nil {
		return err
	}

	c.emitRefund(ctx, contribution, balance)
	return nil
}

// Withdraw sweeps the full native-currency vault to the admin once the soft
// cap is latched. Repeat calls with nothing in the vault are no-ops.
func (c *Contract) Withdraw(ctx CallCtx) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	if err := c.requireAdmin(ctx.Caller); err != nil {
		return err
	}
	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	if !t.SoftCap {
		return ErrSoftCapNotReached
	}

	amount := c.bank.VaultBalance()
	if amount.Sign() > 0 {
		if err := c.bank.Payout(ctx.Caller, amount); err != nil {
			return err
		}
	}

	c.emitWithdraw(ctx, amount)
	return nil
}

// EndSale moves the stage to its terminal value. Idempotent.
func (c *Contract) EndSale(ctx CallCtx) error {
	if err := c.requireAdmin(ctx.Caller); err != nil {
		return err
	}
	c.setStage(StageEnded)
	c.emitStage(ctx, StageEnded)
	return nil
}

// SetSaleStage is the unconditional admin override, including backward moves,
// except that nothing leaves Ended.
func (c *Contract) SetSaleStage(ctx CallCtx, stage SaleStage) error {
	if err := c.requireAdmin(ctx.Caller); err != nil {
		return err
	}
	if stage > StageEnded {
		return fmt.Errorf("unknown sale stage %d: %w", stage, ErrInvalidInput)
	}
	if c.stage() == StageEnded {
		return ErrSaleEnded
	}
	c.setStage(stage)
	c.emitStage(ctx, stage)
	return nil
}
