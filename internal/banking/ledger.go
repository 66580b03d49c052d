package banking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/models/events"
)

var (
	ErrSnapshotMissing   = errors.New("no compliance balance found")
	ErrNoSurplus         = errors.New("no surplus to bank: compliance balance is zero or negative")
	ErrNonPositiveAmount = errors.New("amount to apply must be positive")
	ErrInsufficientBank  = errors.New("insufficient banked balance")
)

// Ledger manages the banking of compliance surpluses: all-or-nothing
// deposits of a year's snapshot and withdrawals against the ship's
// running total across all years.
type Ledger struct {
	store     interfaces.ComplianceStore
	publisher interfaces.EventPublisher // optional; nil disables events
	now       func() time.Time
}

func NewLedger(store interfaces.ComplianceStore, publisher interfaces.EventPublisher) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Bank deposits the full surplus of the (shipId, year) snapshot into the
// ship's bank. The snapshot must exist and be positive. Repeated banking
// of the same key appends independent deposit entries.
func (l *Ledger) Bank(ctx context.Context, shipID string, year int) error {
	cb, err := l.store.FindCB(shipID, year)
	if err != nil {
		return err
	}
	if cb == nil {
		return fmt.Errorf("%w for shipId %s and year %d: run computation first", ErrSnapshotMissing, shipID, year)
	}
	if cb.CBGco2eq <= 0 {
		return ErrNoSurplus
	}

	entry := models.BankEntry{
		ID:           uuid.New().String(),
		ShipID:       shipID,
		Year:         year,
		AmountGco2eq: cb.CBGco2eq,
		CreatedAt:    l.now(),
	}
	if err := l.store.AppendBankEntry(ctx, entry); err != nil {
		return err
	}

	l.publish(events.TopicSurplusBanked, events.SurplusBanked{
		EntryID:      entry.ID,
		ShipID:       shipID,
		Year:         year,
		AmountGco2eq: entry.AmountGco2eq,
		OccurredAt:   entry.CreatedAt,
	})
	return nil
}

// Apply withdraws amount from the ship's banked total. The withdrawal is
// recorded as a negative entry dated to the current calendar year; it is
// not tied to the year(s) whose deposits fund it.
func (l *Ledger) Apply(ctx context.Context, shipID string, amount float64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	total, err := l.store.TotalBanked(shipID)
	if err != nil {
		return err
	}
	if amount > total {
		return fmt.Errorf("%w: cannot apply %v, only %v is available", ErrInsufficientBank, amount, total)
	}

	entry := models.BankEntry{
		ID:           uuid.New().String(),
		ShipID:       shipID,
		Year:         l.now().Year(),
		AmountGco2eq: -amount,
		CreatedAt:    l.now(),
	}
	if err := l.store.AppendBankEntry(ctx, entry); err != nil {
		return err
	}

	l.publish(events.TopicBankedApplied, events.BankedApplied{
		EntryID:      entry.ID,
		ShipID:       shipID,
		AmountGco2eq: entry.AmountGco2eq,
		OccurredAt:   entry.CreatedAt,
	})
	return nil
}

// GetAdjusted returns the year's snapshot value (0 if none), the running
// ledger total across all years, and their sum. Read-only.
func (l *Ledger) GetAdjusted(shipID string, year int) (*models.AdjustedBalance, error) {
	cb, err := l.store.FindCB(shipID, year)
	if err != nil {
		return nil, err
	}
	baseCB := 0.0
	if cb != nil {
		baseCB = cb.CBGco2eq
	}

	total, err := l.store.TotalBanked(shipID)
	if err != nil {
		return nil, err
	}

	return &models.AdjustedBalance{
		BaseCB:      baseCB,
		TotalBanked: total,
		AdjustedCB:  baseCB + total,
	}, nil
}

// Records returns the ledger entries for a ship and year.
func (l *Ledger) Records(shipID string, year int) ([]models.BankEntry, error) {
	return l.store.BankEntriesFor(shipID, year)
}

func (l *Ledger) publish(topic string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(topic, event); err != nil {
		log.Printf("[WARN] publish %s event: %v", topic, err)
	}
}
