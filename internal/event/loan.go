package event

// LoanEvent represents a single borrow, optionally later marked repaid.
// Amount is in minor currency units. Invariant: RepaidAt is non-nil if
// and only if Status == StatusRepaid, and *RepaidAt >= BorrowedAt.
type LoanEvent struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	PoolID     string     `json:"pool_id"`
	Amount     int64      `json:"amount"`
	BorrowedAt int64      `json:"borrowed_at"`
	RepaidAt   *int64     `json:"repaid_at,omitempty"`
	Status     LoanStatus `json:"status"`
}

// Repaid reports whether the loan carries a repayment timestamp.
func (l *LoanEvent) Repaid() bool {
	return l.Status == StatusRepaid && l.RepaidAt != nil
}
