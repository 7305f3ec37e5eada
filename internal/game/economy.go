package game

// Wallet holds the match's essence. The balance never goes negative.
type Wallet struct {
	essence int
}

// NewWallet returns a wallet holding n essence (negative n is treated as zero).
func NewWallet(n int) Wallet {
	if n < 0 {
		n = 0
	}
	return Wallet{essence: n}
}

// Balance returns the current essence.
func (w Wallet) Balance() int {
	return w.essence
}

// Earn adds essence. Non-positive amounts are ignored.
func (w *Wallet) Earn(n int) {
	if n > 0 {
		w.essence += n
	}
}

// Spend deducts n essence if the balance covers it.
// It reports whether the purchase went through; on false nothing changes.
func (w *Wallet) Spend(n int) bool {
	if n < 0 || n > w.essence {
		return false
	}
	w.essence -= n
	return true
}

// CanAfford reports whether n essence is available.
func (w Wallet) CanAfford(n int) bool {
	return n >= 0 && n <= w.essence
}
