package host

import (
	"fmt"
	"math/big"
	"sync"

	"nova_token/contract"
)

// Ledger is an in-memory fungible-balance ledger. It enforces non-negative
// amounts and sufficient balances; the contract relies on those checks.
type Ledger struct {
	mu       sync.RWMutex
	balances map[contract.Address]*big.Int
	supply   *big.Int
}

// NewLedger returns an empty ledger with zero supply.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[contract.Address]*big.Int),
		supply:   new(big.Int),
	}
}

func (l *Ledger) BalanceOf(addr contract.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply)
}

func (l *Ledger) Transfer(from, to contract.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.balances[from]
	if src == nil || src.Cmp(amount) < 0 {
		return fmt.Errorf("transfer of %s from %s: %w", amount, from, contract.ErrInsufficientBalance)
	}
	src.Sub(src, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) Mint(to contract.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.supply.Add(l.supply, amount)
	return nil
}

func (l *Ledger) Burn(from contract.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.balances[from]
	if src == nil || src.Cmp(amount) < 0 {
		return fmt.Errorf("burn of %s from %s: %w", amount, from, contract.ErrInsufficientBalance)
	}
	src.Sub(src, amount)
	l.supply.Sub(l.supply, amount)
	return nil
}

// credit assumes the lock is held.
func (l *Ledger) credit(to contract.Address, amount *big.Int) {
	if b, ok := l.balances[to]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[to] = new(big.Int).Set(amount)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("negative or nil amount: %w", contract.ErrInvalidInput)
	}
	return nil
}

var _ contract.Ledger = (*Ledger)(nil)
