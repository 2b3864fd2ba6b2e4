package contract

import (
	"fmt"
	"math/big"
	"strings"
)

// Governance. Proposals are open text, weight is the voter's live token
// balance at vote time, and each address votes at most once per proposal.

// maxProposalDescription bounds stored proposal text.
const maxProposalDescription = 2048

// CreateProposal opens a proposal with a 7-day voting window and returns its
// id. Proposing is an admin action; voting is open to every holder.
func (c *Contract) CreateProposal(ctx CallCtx, description string) (uint64, error) {
	if err := c.requireAdmin(ctx.Caller); err != nil {
		return 0, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return 0, fmt.Errorf("proposal description required: %w", ErrInvalidInput)
	}
	if len(description) > maxProposalDescription {
		return 0, fmt.Errorf("proposal description too long: %w", ErrInvalidInput)
	}

	id := c.getCount(proposalCountKey) + 1
	c.setCount(proposalCountKey, id)

	rec := &proposalRecord{
		ID:           id,
		Description:  description,
		Creator:      ctx.Caller,
		VotesFor:     new(big.Int),
		VotesAgainst: new(big.Int),
		CreatedAt:    ctx.Now,
		EndTime:      ctx.Now + VotingDurationSeconds,
	}
	c.state.Set(proposalKey(id), encodeProposal(rec))

	c.emitProposal(ctx, id, rec.EndTime)
	return id, nil
}

// Vote casts the caller's full live balance for or against. The weight is
// snapshotted into the vote record at cast time; later balance changes do not
// revise a cast vote.
func (c *Contract) Vote(ctx CallCtx, id uint64, support bool) error {
	rec, err := c.loadProposal(id)
	if err != nil {
		return err
	}
	if ctx.Now >= rec.EndTime {
		return ErrVotingClosed
	}
	if ptr := c.state.Get(voteKey(id, ctx.Caller)); ptr != nil && *ptr != "" {
		return ErrAlreadyVoted
	}

	weight := c.ledger.BalanceOf(ctx.Caller)
	if weight.Sign() == 0 {
		return ErrNoVotingPower
	}

	if support {
		rec.VotesFor = new(big.Int).Add(rec.VotesFor, weight)
	} else {
		rec.VotesAgainst = new(big.Int).Add(rec.VotesAgainst, weight)
	}
	c.state.Set(proposalKey(id), encodeProposal(rec))
	c.state.Set(voteKey(id, ctx.Caller), encodeVote(&voteRecord{
		Support: support,
		Weight:  weight,
		VotedAt: ctx.Now,
	}))

	c.emitVote(ctx, id, support, weight)
	return nil
}

// ExecuteProposal finalizes a proposal after its window closes: the outcome
// (strict majority of for over against) is recorded once and becomes
// immutable. The action itself is advisory, no on-chain effect attaches.
func (c *Contract) ExecuteProposal(ctx CallCtx, id uint64) (bool, error) {
	if err := c.requireAdmin(ctx.Caller); err != nil {
		return false, err
	}
	rec, err := c.loadProposal(id)
	if err != nil {
		return false, err
	}
	if rec.Executed {
		return false, ErrAlreadyExecuted
	}
	if ctx.Now < rec.EndTime {
		return false, ErrTooEarly
	}

	rec.Executed = true
	rec.Passed = rec.VotesFor.Cmp(rec.VotesAgainst) > 0
	c.state.Set(proposalKey(id), encodeProposal(rec))

	c.emitExecute(ctx, id, rec.Passed)
	return rec.Passed, nil
}

func (c *Contract) loadProposal(id uint64) (*proposalRecord, error) {
	if _, err := c.loadConfig(); err != nil {
		return nil, err
	}
	ptr := c.state.Get(proposalKey(id))
	if ptr == nil || *ptr == "" {
		return nil, ErrNoSuchProposal
	}
	rec, err := decodeProposal(*ptr)
	if err != nil {
		return nil, fmt.Errorf("corrupt proposal record: %w", err)
	}
	return rec, nil
}
