package contract

import (
	"errors"
	"fmt"
)

// Error classes. Every failure is non-retryable: the caller must correct its
// input or wait for a state change and resubmit. Specific conditions below
// wrap one of these so errors.Is classifies them.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrStateConflict       = errors.New("state conflict")
	ErrLimitExceeded       = errors.New("limit exceeded")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
)

var (
	ErrNotInitialized     = fmt.Errorf("contract not initialized: %w", ErrStateConflict)
	ErrAlreadyInitialized = fmt.Errorf("contract already initialized: %w", ErrStateConflict)

	ErrSaleEnded         = fmt.Errorf("sale has ended: %w", ErrStateConflict)
	ErrRefundClosed      = fmt.Errorf("refunds closed once soft cap is reached: %w", ErrStateConflict)
	ErrSoftCapNotReached = fmt.Errorf("soft cap not reached: %w", ErrStateConflict)
	ErrNothingToRefund   = fmt.Errorf("nothing to refund: %w", ErrStateConflict)

	ErrAllocationExceeded = fmt.Errorf("allocation pool exceeded: %w", ErrLimitExceeded)
	ErrPurchaseLimit      = fmt.Errorf("purchase limit exceeded: %w", ErrLimitExceeded)
	ErrInsufficientPool   = fmt.Errorf("insufficient ecosystem pool: %w", ErrLimitExceeded)

	ErrTooEarly       = fmt.Errorf("too early: %w", ErrStateConflict)
	ErrAlreadyClaimed = fmt.Errorf("team tokens already claimed: %w", ErrStateConflict)

	ErrNothingStaked = fmt.Errorf("nothing staked: %w", ErrStateConflict)

	ErrNoSuchProposal  = fmt.Errorf("no such proposal: %w", ErrNotFound)
	ErrVotingClosed    = fmt.Errorf("voting window closed: %w", ErrStateConflict)
	ErrAlreadyVoted    = fmt.Errorf("already voted: %w", ErrStateConflict)
	ErrAlreadyExecuted = fmt.Errorf("proposal already executed: %w", ErrStateConflict)
	ErrNoVotingPower   = fmt.Errorf("no voting power: %w", ErrInsufficientBalance)

	ErrLiquidityLocked = fmt.Errorf("liquidity already locked: %w", ErrStateConflict)

	ErrReentrantCall = fmt.Errorf("reentrant call: %w", ErrStateConflict)
)
