package host

import (
	"fmt"
	"math/big"
	"sync"

	"nova_token/contract"
)

// Bank tracks native-currency accounts plus the contract vault. Draw moves a
// payment from an account into the vault; Payout pays out of it.
type Bank struct {
	mu       sync.RWMutex
	accounts map[contract.Address]*big.Int
	vault    *big.Int
}

// NewBank returns a bank with empty accounts and an empty vault.
func NewBank() *Bank {
	return &Bank{
		accounts: make(map[contract.Address]*big.Int),
		vault:    new(big.Int),
	}
}

// Deposit funds an account out of thin air. Test and faucet use only.
func (b *Bank) Deposit(addr contract.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acct, ok := b.accounts[addr]; ok {
		acct.Add(acct, amount)
		return
	}
	b.accounts[addr] = new(big.Int).Set(amount)
}

// AccountBalance returns the native balance of addr.
func (b *Bank) AccountBalance(addr contract.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if acct, ok := b.accounts[addr]; ok {
		return new(big.Int).Set(acct)
	}
	return new(big.Int)
}

func (b *Bank) Draw(from contract.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("negative or nil amount: %w", contract.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct := b.accounts[from]
	if acct == nil || acct.Cmp(amount) < 0 {
		return fmt.Errorf("draw of %s from %s: %w", amount, from, contract.ErrInsufficientBalance)
	}
	acct.Sub(acct, amount)
	b.vault.Add(b.vault, amount)
	return nil
}

func (b *Bank) Payout(to contract.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("negative or nil amount: %w", contract.ErrInvalidInput)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.vault.Cmp(amount) < 0 {
		return fmt.Errorf("payout of %s exceeds vault: %w", amount, contract.ErrInsufficientBalance)
	}
	b.vault.Sub(b.vault, amount)
	if acct, ok := b.accounts[to]; ok {
		acct.Add(acct, amount)
	} else {
		b.accounts[to] = new(big.Int).Set(amount)
	}
	return nil
}

func (b *Bank) VaultBalance() *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return new(big.Int).Set(b.vault)
}

var _ contract.Bank = (*Bank)(nil)
