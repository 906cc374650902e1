package event

// Dataset bundles the three raw collections a data provider supplies.
// The engine treats it as immutable: a refresh produces a whole new
// Dataset, never an in-place patch.
type Dataset struct {
	Accounts     []Account
	Loans        []LoanEvent
	Liquidations []LiquidationEvent

	// FetchedAt is when the provider retrieved the collections,
	// milliseconds since epoch.
	FetchedAt int64
}

// Empty reports whether the dataset carries no events at all.
func (d Dataset) Empty() bool {
	return len(d.Accounts) == 0 && len(d.Loans) == 0 && len(d.Liquidations) == 0
}
