package contract

import "fmt"

// ClaimTeamTokens mints the team pool to the configured team wallet after the
// vesting delay has fully elapsed. Only the team wallet itself may claim; the
// pool is released in one tranche and the claimed latch makes the operation
// one-shot.
func (c *Contract) ClaimTeamTokens(ctx CallCtx) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if ctx.Caller != cfg.Team {
		return fmt.Errorf("caller %s is not the team wallet: %w", ctx.Caller, ErrUnauthorized)
	}
	t, err := c.loadTotals()
	if err != nil {
		return err
	}
	if t.TeamClaimed {
		return ErrAlreadyClaimed
	}
	if ctx.Now < cfg.UnlockAt {
		return ErrTooEarly
	}

	t.TeamClaimed = true
	c.saveTotals(t)

	// The team pool stays unminted until this point; minting here keeps the
	// circulating supply equal to issued pools plus the claimed tranche.
	if err := c.ledger.Mint(cfg.Team, TeamPool); err != nil {
		return err
	}

	c.emitTeamClaim(ctx, cfg.Team, TeamPool)
	return nil
}
