package event

import "encoding/json"

// TimelineKind discriminates the variants of an account's timeline.
type TimelineKind int32

const (
	KindUnknown TimelineKind = iota
	KindCreated
	KindBorrowed
	KindRepaid
	KindLiquidated
)

func (k TimelineKind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindBorrowed:
		return "borrowed"
	case KindRepaid:
		return "repaid"
	case KindLiquidated:
		return "liquidated"
	default:
		return "unknown"
	}
}

func (k TimelineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// TimelineEvent is one entry in an account's time-ordered history.
// Only the fields relevant to the variant are populated:
//
//	Created:    Timestamp
//	Borrowed:   PoolID, Amount, Timestamp
//	Repaid:     PoolID, Amount, Timestamp
//	Liquidated: PoolID, Amount (liquidation amount), DefaultAmount, Timestamp
type TimelineEvent struct {
	Kind          TimelineKind `json:"kind"`
	PoolID        string       `json:"pool_id,omitempty"`
	Amount        int64        `json:"amount,omitempty"`
	DefaultAmount int64        `json:"default_amount,omitempty"`
	Timestamp     int64        `json:"timestamp"`
}
