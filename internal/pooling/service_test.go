package pooling

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/models/events"
	"github.com/fueleu/ghg-compliance-ledger/internal/storage/memory"
)

type capturingPublisher struct {
	topics []string
}

func (p *capturingPublisher) Publish(topic string, event any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func TestCreatePoolPersistsAllocation(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{}
	svc := NewService(store, publisher)

	members := []models.PoolMemberInput{
		{ShipID: "S1", CBBefore: 1000},
		{ShipID: "S2", CBBefore: 200},
		{ShipID: "D1", CBBefore: -500},
		{ShipID: "D2", CBBefore: -400},
	}

	pool, err := svc.CreatePool(context.Background(), 2024, members)
	if err != nil {
		t.Fatalf("CreatePool returned error: %v", err)
	}

	if pool.TotalCBBefore != 300 {
		t.Errorf("totalCbBefore = %v, want 300", pool.TotalCBBefore)
	}
	if pool.TotalCBAfter != 300 {
		t.Errorf("totalCbAfter = %v, want 300", pool.TotalCBAfter)
	}
	if pool.Year != 2024 {
		t.Errorf("year = %d, want 2024", pool.Year)
	}
	if len(pool.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(pool.Members))
	}

	want := map[string]float64{"S1": 100, "S2": 200, "D1": 0, "D2": 0}
	for _, m := range pool.Members {
		if m.CBAfter != want[m.ShipID] {
			t.Errorf("%s cbAfter = %v, want %v", m.ShipID, m.CBAfter, want[m.ShipID])
		}
	}

	if len(publisher.topics) != 1 || publisher.topics[0] != events.TopicPoolCreated {
		t.Errorf("published topics = %v, want [%s]", publisher.topics, events.TopicPoolCreated)
	}
}

func TestCreatePoolRejectsTooFewMembers(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)

	_, err := svc.CreatePool(context.Background(), 2024, []models.PoolMemberInput{
		{ShipID: "S1", CBBefore: 100},
	})
	if !errors.Is(err, ErrTooFewMembers) {
		t.Fatalf("CreatePool error = %v, want %v", err, ErrTooFewMembers)
	}
}

func TestCreatePoolRejectsNegativeSum(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)

	_, err := svc.CreatePool(context.Background(), 2024, []models.PoolMemberInput{
		{ShipID: "S1", CBBefore: 100},
		{ShipID: "D1", CBBefore: -500},
	})
	if !errors.Is(err, ErrNegativePoolSum) {
		t.Fatalf("CreatePool error = %v, want %v", err, ErrNegativePoolSum)
	}
	if !strings.Contains(err.Error(), "-400") {
		t.Errorf("error message %q does not state the pool sum -400", err.Error())
	}
}

func TestCreatePoolZeroSumPoolIsValid(t *testing.T) {
	svc := NewService(memory.NewStore(), nil)

	pool, err := svc.CreatePool(context.Background(), 2025, []models.PoolMemberInput{
		{ShipID: "S1", CBBefore: 500},
		{ShipID: "D1", CBBefore: -500},
	})
	if err != nil {
		t.Fatalf("CreatePool returned error: %v", err)
	}
	if pool.TotalCBAfter != 0 {
		t.Errorf("totalCbAfter = %v, want 0", pool.TotalCBAfter)
	}
	for _, m := range pool.Members {
		if m.CBAfter != 0 {
			t.Errorf("%s cbAfter = %v, want 0", m.ShipID, m.CBAfter)
		}
	}
}
