package contract

import "math/big"

// Read-only queries. All of them tolerate concurrent host reads; none write.

// Stage returns the current fundraising stage.
func (c *Contract) Stage() SaleStage { return c.stage() }

// GetStatus snapshots the global counters and latches.
func (c *Contract) GetStatus() (*Status, error) {
	t, err := c.loadTotals()
	if err != nil {
		return nil, err
	}
	return &Status{
		Stage:              c.stage(),
		SoftCapReached:     t.SoftCap,
		LiquidityLocked:    t.LiquidityLocked,
		TeamClaimed:        t.TeamClaimed,
		TotalRaised:        t.Raised,
		TotalRefunded:      t.Refunded,
		PoolIssued:         t.Issued,
		EcosystemRemaining: t.EcosystemRemaining,
	}, nil
}

// ContributionOf reports the live native-currency contribution of addr, zero
// after a refund.
func (c *Contract) ContributionOf(addr Address) *big.Int {
	return c.contributionOf(addr)
}

// BalanceOf passes through to the ledger.
func (c *Contract) BalanceOf(addr Address) *big.Int {
	return c.ledger.BalanceOf(addr)
}

// StakeOf returns the open stake of addr, nil when none.
func (c *Contract) StakeOf(addr Address) (*StakeInfo, error) {
	rec, err := c.stakeOf(addr)
	if err != nil || rec == nil {
		return nil, err
	}
	return &StakeInfo{Amount: rec.Amount, Since: rec.Since}, nil
}

// ReferrerOf returns the stored referral link, the zero address when none.
func (c *Contract) ReferrerOf(addr Address) Address {
	ptr := c.state.Get(referralKey(addr))
	if ptr == nil {
		return ZeroAddress
	}
	return Address(*ptr)
}

// ProposalCount returns how many proposals have been created.
func (c *Contract) ProposalCount() uint64 {
	return c.getCount(proposalCountKey)
}

// ProposalByID fetches one proposal.
func (c *Contract) ProposalByID(id uint64) (*Proposal, error) {
	rec, err := c.loadProposal(id)
	if err != nil {
		return nil, err
	}
	return proposalView(rec), nil
}

// Proposals lists every proposal in id order. Ids are dense, starting at 1.
func (c *Contract) Proposals() ([]*Proposal, error) {
	if _, err := c.loadConfig(); err != nil {
		return nil, err
	}
	count := c.getCount(proposalCountKey)
	out := make([]*Proposal, 0, count)
	for id := uint64(1); id <= count; id++ {
		rec, err := c.loadProposal(id)
		if err != nil {
			return nil, err
		}
		out = append(out, proposalView(rec))
	}
	return out, nil
}

// VoteOf returns how addr voted on proposal id, nil when it has not.
func (c *Contract) VoteOf(id uint64, addr Address) (support bool, weight *big.Int, ok bool) {
	ptr := c.state.Get(voteKey(id, addr))
	if ptr == nil || *ptr == "" {
		return false, nil, false
	}
	rec, err := decodeVote(*ptr)
	if err != nil {
		return false, nil, false
	}
	return rec.Support, rec.Weight, true
}

// Allocation reports the fixed pool layout next to the live counters.
func (c *Contract) Allocation() (*AllocationInfo, error) {
	t, err := c.loadTotals()
	if err != nil {
		return nil, err
	}
	return &AllocationInfo{
		SalePool:           new(big.Int).Set(SalePool),
		EcosystemPool:      new(big.Int).Set(EcosystemPool),
		LiquidityPool:      new(big.Int).Set(LiquidityPool),
		TeamPool:           new(big.Int).Set(TeamPool),
		CombinedPool:       combinedPool(),
		PoolIssued:         t.Issued,
		Headroom:           issuanceHeadroom(t),
		EcosystemRemaining: t.EcosystemRemaining,
	}, nil
}

// TeamUnlockAt exposes the vesting deadline for status endpoints.
func (c *Contract) TeamUnlockAt() (int64, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return 0, err
	}
	return cfg.UnlockAt, nil
}

func proposalView(rec *proposalRecord) *Proposal {
	return &Proposal{
		ID:           rec.ID,
		Description:  rec.Description,
		Creator:      rec.Creator,
		VotesFor:     rec.VotesFor,
		VotesAgainst: rec.VotesAgainst,
		CreatedAt:    rec.CreatedAt,
		EndTime:      rec.EndTime,
		Executed:     rec.Executed,
		Passed:       rec.Passed,
	}
}
