package contract

import "math/big"

// Ledger is the external fungible-balance primitive. It enforces amount >= 0
// and sufficient-balance checks; its failures propagate as operation failure.
type Ledger interface {
	BalanceOf(addr Address) *big.Int
	Transfer(from, to Address, amount *big.Int) error
	Mint(to Address, amount *big.Int) error
	Burn(from Address, amount *big.Int) error
	TotalSupply() *big.Int
}

// Bank is the external native-currency primitive. Draw pulls a declared
// payment from the caller into the contract vault; Payout pays out of the
// vault.
type Bank interface {
	Draw(from Address, amount *big.Int) error
	Payout(to Address, amount *big.Int) error
	VaultBalance() *big.Int
}

// EventSink receives the terse pipe-delimited event lines emitted by every
// successful state transition.
type EventSink interface {
	Emit(line string)
}

// EventSinkFunc adapts a plain function to an EventSink.
type EventSinkFunc func(line string)

func (f EventSinkFunc) Emit(line string) { f(line) }
