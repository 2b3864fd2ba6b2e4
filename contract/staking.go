package contract

import (
	"fmt"
	"math/big"
)

// Staking. Principal moves into contract custody; rewards accrue as simple
// interest (RewardRatePercent per YearSeconds, floor division) and are paid
// out of the pooled supply the contract already holds, clipped to allocation
// headroom so the fixed total supply never stretches.

// Stake moves amount into custody. A second stake tops up the principal but
// restarts the accrual clock; pending interest on the old position is
// forfeited.
func (c *Contract) Stake(ctx CallCtx, amount *big.Int) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("stake amount must be positive: %w", ErrInvalidInput)
	}
	if _, err := c.loadConfig(); err != nil {
		return err
	}
	prev, err := c.stakeOf(ctx.Caller)
	if err != nil {
		return err
	}

	if err := c.ledger.Transfer(ctx.Caller, c.addr, amount); err != nil {
		return err
	}

	total := new(big.Int).Set(amount)
	if prev != nil {
		total.Add(total, prev.Amount)
	}
	c.state.Set(stakeKey(ctx.Caller), encodeStake(&stakeRecord{
		Amount: total,
		Since:  ctx.Now,
	}))

	c.emitStake(ctx, total)
	return nil
}

// Unstake closes the caller's position, paying principal plus accrued
// interest:
//
//	reward = amount * rate% * elapsed / (100 * YearSeconds)
//
// The reward is clipped to the remaining allocation headroom; the clipped
// part counts as pool issuance so circulation stays inside the pools.
func (c *Contract) Unstake(ctx CallCtx) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.exit()

	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	rec, err := c.stakeOf(ctx.Caller)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNothingStaked
	}

	elapsed := ctx.Now - rec.Since
	if elapsed < 0 {
		elapsed = 0
	}
	reward := new(big.Int).Mul(rec.Amount, big.NewInt(RewardRatePercent))
	reward.Mul(reward, big.NewInt(elapsed))
	reward.Quo(reward, big.NewInt(100*int64(YearSeconds)))

	if head := issuanceHeadroom(t); reward.Cmp(head) > 0 {
		reward.Set(head)
	}

	c.state.Delete(stakeKey(ctx.Caller))
	if reward.Sign() > 0 {
		recordIssuance(t, reward)
		c.saveTotals(t)
	}

	payout := new(big.Int).Add(rec.Amount, reward)
	if err := c.ledger.Transfer(c.addr, ctx.Caller, payout); err != nil {
		return err
	}

	c.emitUnstake(ctx, rec.Amount, reward)
	return nil
}

// stakeOf loads the caller's stake record, nil when none exists.
func (c *Contract) stakeOf(addr Address) (*stakeRecord, error) {
	ptr := c.state.Get(stakeKey(addr))
	if ptr == nil || *ptr == "" {
		return nil, nil
	}
	rec, err := decodeStake(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt stake record: %w", err)
	}
	return rec, nil
}
