package contract

import (
	"math/big"
	"strconv"
	"strings"
)

// Event lines are terse pipe-delimited records: a short tag, then the fields
// a consumer needs to replay the transition. Amounts are decimal base units.

func (c *Contract) emit(fields ...string) {
	c.events.Emit(strings.Join(fields, "|"))
}

func bigField(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (c *Contract) emitInit(ctx CallCtx, owner, team Address) {
	c.emit("init", owner.String(), team.String(), strconv.FormatInt(ctx.Now, 10))
}

func (c *Contract) emitPurchase(ctx CallCtx, paid, tokens *big.Int, referred bool) {
	ref := "0"
	if referred {
		ref = "1"
	}
	c.emit("buy", ctx.Caller.String(), bigField(paid), bigField(tokens), ref)
}

func (c *Contract) emitSoftCap(ctx CallCtx, raised *big.Int) {
	c.emit("cap", bigField(raised), strconv.FormatInt(ctx.Now, 10))
}

func (c *Contract) emitRefund(ctx CallCtx, contribution, returned *big.Int) {
	c.emit("rfnd", ctx.Caller.String(), bigField(contribution), bigField(returned))
}

func (c *Contract) emitWithdraw(ctx CallCtx, amount *big.Int) {
	c.emit("wd", ctx.Caller.String(), bigField(amount))
}

func (c *Contract) emitStage(ctx CallCtx, stage SaleStage) {
	c.emit("stg", stage.String(), ctx.Caller.String())
}

func (c *Contract) emitTeamClaim(ctx CallCtx, team Address, amount *big.Int) {
	c.emit("team", team.String(), bigField(amount))
}

func (c *Contract) emitStake(ctx CallCtx, total *big.Int) {
	c.emit("stk", ctx.Caller.String(), bigField(total))
}

func (c *Contract) emitUnstake(ctx CallCtx, principal, reward *big.Int) {
	c.emit("ustk", ctx.Caller.String(), bigField(principal), bigField(reward))
}

func (c *Contract) emitProposal(ctx CallCtx, id uint64, endTime int64) {
	c.emit("pc", strconv.FormatUint(id, 10), ctx.Caller.String(), strconv.FormatInt(endTime, 10))
}

func (c *Contract) emitVote(ctx CallCtx, id uint64, support bool, weight *big.Int) {
	s := "0"
	if support {
		s = "1"
	}
	c.emit("v", strconv.FormatUint(id, 10), ctx.Caller.String(), s, bigField(weight))
}

func (c *Contract) emitExecute(ctx CallCtx, id uint64, passed bool) {
	p := "0"
	if passed {
		p = "1"
	}
	c.emit("px", strconv.FormatUint(id, 10), p)
}

func (c *Contract) emitLiquidityLock(ctx CallCtx, amount *big.Int) {
	c.emit("liq", bigField(amount), strconv.FormatInt(ctx.Now, 10))
}

func (c *Contract) emitEcosystem(ctx CallCtx, to Address, amount, remaining *big.Int) {
	c.emit("eco", to.String(), bigField(amount), bigField(remaining))
}

func (c *Contract) emitBurn(ctx CallCtx, amount *big.Int) {
	c.emit("brn", ctx.Caller.String(), bigField(amount))
}
