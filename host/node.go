package host

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"nova_token/contract"
)

// Clock supplies the chain timestamp in unix seconds.
type Clock func() int64

// SystemClock reads the wall clock.
func SystemClock() int64 { return time.Now().Unix() }

// ManualClock is a settable clock for deterministic runs.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock starts the clock at now.
func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

// Advance moves the clock forward by d seconds.
func (m *ManualClock) Advance(d int64) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps the clock to now.
func (m *ManualClock) Set(now int64) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Now reads the clock.
func (m *ManualClock) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Node owns a contract instance and serializes every call against it, the
// way a single-threaded chain runtime would. Each call gets a fresh CallCtx
// with the node clock and a uuid transaction id.
type Node struct {
	mu       sync.Mutex
	contract *contract.Contract
	state    contract.State
	ledger   *Ledger
	bank     *Bank
	clock    Clock
	events   []contract.EventSink
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithClock replaces the default wall clock.
func WithClock(c Clock) NodeOption {
	return func(n *Node) { n.clock = c }
}

// WithEventSink attaches an extra sink; events fan out to all of them.
func WithEventSink(s contract.EventSink) NodeOption {
	return func(n *Node) { n.events = append(n.events, s) }
}

// WithState swaps the default in-memory store for a durable one.
func WithState(s contract.State) NodeOption {
	return func(n *Node) { n.state = s }
}

// ContractAddress is the ledger account the node hands to its contract.
const ContractAddress contract.Address = "contract.nova"

// NewNode assembles a node with fresh in-memory primitives.
func NewNode(opts ...NodeOption) *Node {
	n := &Node{
		state:  NewMemState(),
		ledger: NewLedger(),
		bank:   NewBank(),
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(n)
	}
	sink := contract.EventSinkFunc(func(line string) {
		for _, s := range n.events {
			s.Emit(line)
		}
	})
	n.contract = contract.New(n.state, n.ledger, n.bank, sink, ContractAddress)
	return n
}

// Contract exposes the underlying state machine for read-only queries. Writes
// must go through Call.
func (n *Node) Contract() *contract.Contract { return n.contract }

// Ledger exposes the token ledger.
func (n *Node) Ledger() *Ledger { return n.ledger }

// Bank exposes the native-currency bank.
func (n *Node) Bank() *Bank { return n.bank }

// Call runs fn against the contract under the node lock with a stamped
// context.
func (n *Node) Call(caller contract.Address, fn func(*contract.Contract, contract.CallCtx) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	ctx := contract.CallCtx{
		Caller: caller,
		Now:    n.clock(),
		TxID:   uuid.NewString(),
	}
	return fn(n.contract, ctx)
}
