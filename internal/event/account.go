package event

// Account identifies a margin position holder. Created once on-chain,
// never mutated or deleted within a session.
type Account struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"created_at"` // milliseconds since epoch
}
