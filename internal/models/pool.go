package models

// PoolMemberInput is a ship's balance entering a pool.
type PoolMemberInput struct {
	ShipID   string  `json:"shipId"`
	CBBefore float64 `json:"cbBefore"`
}

// PoolMemberResult is a pool member after allocation.
type PoolMemberResult struct {
	ShipID   string  `json:"shipId"`
	CBBefore float64 `json:"cbBefore"`
	CBAfter  float64 `json:"cbAfter"`
}

// PoolResult is a persisted pool: the member set with before/after
// balances plus the pool totals. Created atomically as one unit.
type PoolResult struct {
	ID            int64              `json:"id"`
	Year          int                `json:"year"`
	Members       []PoolMemberResult `json:"members"`
	TotalCBBefore float64            `json:"totalCbBefore"`
	TotalCBAfter  float64            `json:"totalCbAfter"`
}
