package events

import "time"

// Topic names for published events.
const (
	TopicSurplusBanked = "surplus_banked"
	TopicBankedApplied = "banked_applied"
	TopicPoolCreated   = "pool_created"
)

type SurplusBanked struct {
	EntryID      string    `json:"entry_id"`
	ShipID       string    `json:"ship_id"`
	Year         int       `json:"year"`
	AmountGco2eq float64   `json:"amount_gco2eq"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type BankedApplied struct {
	EntryID      string    `json:"entry_id"`
	ShipID       string    `json:"ship_id"`
	AmountGco2eq float64   `json:"amount_gco2eq"` // negative: a withdrawal
	OccurredAt   time.Time `json:"occurred_at"`
}

type PoolCreated struct {
	PoolID        int64     `json:"pool_id"`
	Year          int       `json:"year"`
	MemberCount   int       `json:"member_count"`
	TotalCBBefore float64   `json:"total_cb_before"`
	TotalCBAfter  float64   `json:"total_cb_after"`
	OccurredAt    time.Time `json:"occurred_at"`
}
