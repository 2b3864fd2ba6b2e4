package contract

import "math/big"

// Address identifies an account on the host ledger. The contract never
// inspects its contents beyond equality and emptiness.
type Address string

// ZeroAddress is the null address; operations that require a real
// counterparty reject it.
const ZeroAddress Address = ""

// String returns the underlying account string.
func (a Address) String() string { return string(a) }

// IsZero reports whether the address is the null address.
func (a Address) IsZero() bool { return a == ZeroAddress }

// SaleStage is the fundraising stage machine. Ended is terminal; the other
// stages are freely settable by the admin.
type SaleStage uint8

const (
	StagePrivateSale SaleStage = 0
	StagePreSale     SaleStage = 1
	StagePublicSale  SaleStage = 2
	StageEnded       SaleStage = 3
)

// String prints the stage as lower-case text for events and API responses.
func (s SaleStage) String() string {
	switch s {
	case StagePrivateSale:
		return "private"
	case StagePreSale:
		return "presale"
	case StagePublicSale:
		return "public"
	case StageEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ParseSaleStage maps the textual stage names back to the enum.
func ParseSaleStage(s string) (SaleStage, bool) {
	switch s {
	case "private":
		return StagePrivateSale, true
	case "presale":
		return StagePreSale, true
	case "public":
		return StagePublicSale, true
	case "ended":
		return StageEnded, true
	}
	return StagePrivateSale, false
}

// CallCtx carries the host-supplied call environment: who invoked the
// operation, the chain timestamp in unix seconds, and the transaction id
// used in event lines. The host builds one per call; the contract never
// reads a clock of its own.
type CallCtx struct {
	Caller Address
	Now    int64
	TxID   string
}

// StakeInfo is the queryable view of a stake record.
type StakeInfo struct {
	Amount *big.Int
	Since  int64
}

// Proposal is the queryable view of a governance proposal.
type Proposal struct {
	ID           uint64
	Description  string
	Creator      Address
	VotesFor     *big.Int
	VotesAgainst *big.Int
	CreatedAt    int64
	EndTime      int64
	Executed     bool
	Passed       bool
}

// Status is a snapshot of the global counters and one-way latches.
type Status struct {
	Stage              SaleStage
	SoftCapReached     bool
	LiquidityLocked    bool
	TeamClaimed        bool
	TotalRaised        *big.Int
	TotalRefunded      *big.Int
	PoolIssued         *big.Int
	EcosystemRemaining *big.Int
}

// AllocationInfo reports the fixed pool sizes next to the live counters so
// dashboards can render headroom without re-deriving constants.
type AllocationInfo struct {
	SalePool           *big.Int
	EcosystemPool      *big.Int
	LiquidityPool      *big.Int
	TeamPool           *big.Int
	CombinedPool       *big.Int
	PoolIssued         *big.Int
	Headroom           *big.Int
	EcosystemRemaining *big.Int
}
