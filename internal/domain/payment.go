package domain

// PaymentInfo is the payment state accumulated on a schedule.
// Amounts are integer VND. The authoritative ledger is the external
// invoice system; this is a read-mostly mirror.
type PaymentInfo struct {
	TotalPrice int64
	TotalPaid  int64
}

// RemainingBalance returns the amount still owed, never negative.
func (p PaymentInfo) RemainingBalance() int64 {
	remaining := p.TotalPrice - p.TotalPaid
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyPaid reports whether nothing is owed.
func (p PaymentInfo) IsFullyPaid() bool {
	return p.RemainingBalance() == 0
}

// HasPrice reports whether the total price has been populated.
// When false, callers must resolve the price from the linked package or
// services instead of treating the schedule as free.
func (p PaymentInfo) HasPrice() bool {
	return p.TotalPrice > 0
}
