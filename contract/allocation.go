package contract

import "math/big"

// Allocation accounting. Issued tracks the circulating supply that originated
// from the sale, ecosystem and liquidity pools; it may never exceed their
// combined size. Refunds return tokens to the pool and re-open headroom;
// burns do not.

// checkIssuance verifies that issuing amount more base units keeps the
// cumulative issuance within the combined pool.
func checkIssuance(t *totalsRecord, amount *big.Int) error {
	next := new(big.Int).Add(t.Issued, amount)
	if next.Cmp(combinedPool()) > 0 {
		return ErrAllocationExceeded
	}
	return nil
}

// recordIssuance adds amount to the cumulative issuance counter. Callers must
// have passed checkIssuance first.
func recordIssuance(t *totalsRecord, amount *big.Int) {
	t.Issued = new(big.Int).Add(t.Issued, amount)
}

// recordReturn subtracts tokens handed back to the pool, clamping at zero so
// balances acquired outside the pools can never drive the counter negative.
func recordReturn(t *totalsRecord, amount *big.Int) {
	next := new(big.Int).Sub(t.Issued, amount)
	if next.Sign() < 0 {
		next.SetInt64(0)
	}
	t.Issued = next
}

// issuanceHeadroom is the combined pool size minus cumulative issuance.
func issuanceHeadroom(t *totalsRecord) *big.Int {
	head := new(big.Int).Sub(combinedPool(), t.Issued)
	if head.Sign() < 0 {
		head.SetInt64(0)
	}
	return head
}
