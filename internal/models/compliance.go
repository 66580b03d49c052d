package models

import "time"

// ComplianceBalance is the latest computed compliance balance snapshot
// for a (shipId, year) pair. Recomputing replaces the prior snapshot for
// the same key; there is exactly one logical snapshot per key.
type ComplianceBalance struct {
	ShipID   string  `json:"shipId"`
	Year     int     `json:"year"`
	CBGco2eq float64 `json:"cbGco2eq"` // signed; positive = surplus, negative = deficit
}

// BankEntry is a single ledger record for a ship's banked compliance
// balance. Positive amount = deposit, negative amount = withdrawal.
// Entries are append-only and never mutated or deleted.
type BankEntry struct {
	ID           string    `json:"id"`
	ShipID       string    `json:"shipId"`
	Year         int       `json:"year"`
	AmountGco2eq float64   `json:"amountGco2eq"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdjustedBalance is the read-only projection of a ship's position:
// the year's snapshot plus the running ledger total across all years.
type AdjustedBalance struct {
	BaseCB      float64 `json:"baseCB"`
	TotalBanked float64 `json:"totalBanked"`
	AdjustedCB  float64 `json:"adjustedCB"`
}
