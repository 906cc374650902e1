package event

// LiquidationEvent records a forced close of part or all of an account's
// debt in one pool. Invariant: 0 <= DefaultAmount <= LiquidationAmount.
// DefaultAmount is the unrecovered portion, a realized pool loss.
type LiquidationEvent struct {
	ID                    string `json:"id"`
	AccountID             string `json:"account_id"`
	PoolID                string `json:"pool_id"`
	LiquidationAmount     int64  `json:"liquidation_amount"`
	DefaultAmount         int64  `json:"default_amount"`
	PoolRewardAmount      int64  `json:"pool_reward_amount"`
	LiquidatorBaseReward  int64  `json:"liquidator_base_reward"`
	LiquidatorQuoteReward int64  `json:"liquidator_quote_reward"`
	LiquidatedAt          int64  `json:"liquidated_at"`
}

// Recovered returns the portion of the liquidation actually recovered.
func (l *LiquidationEvent) Recovered() int64 {
	return l.LiquidationAmount - l.DefaultAmount
}
