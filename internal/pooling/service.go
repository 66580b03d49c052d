package pooling

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fueleu/ghg-compliance-ledger/internal/interfaces"
	"github.com/fueleu/ghg-compliance-ledger/internal/models"
	"github.com/fueleu/ghg-compliance-ledger/internal/models/events"
)

var (
	ErrTooFewMembers   = errors.New("a pool must have at least two members")
	ErrNegativePoolSum = errors.New("invalid pool: total compliance balance is negative")
)

// InvariantError reports a breach of an allocation invariant. It is a
// defect in the allocator, never something the caller can correct.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string {
	return "allocation invariant breached: " + e.msg
}

// Service validates a pool, runs the greedy allocation, re-checks the
// invariants, and persists the result as one atomic pool record.
type Service struct {
	store     interfaces.PoolStore
	publisher interfaces.EventPublisher // optional; nil disables events
}

func NewService(store interfaces.PoolStore, publisher interfaces.EventPublisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
	}
}

// CreatePool allocates balances across the members and persists the
// pool. Nothing is written when validation, allocation checks, or the
// store transaction fail.
func (s *Service) CreatePool(ctx context.Context, year int, members []models.PoolMemberInput) (*models.PoolResult, error) {
	if len(members) < 2 {
		return nil, ErrTooFewMembers
	}

	var poolSum float64
	for _, m := range members {
		poolSum += m.CBBefore
	}
	if poolSum < 0 {
		return nil, fmt.Errorf("%w: the total compliance balance is %v, which is less than 0", ErrNegativePoolSum, poolSum)
	}

	allocated := allocate(members)

	if err := validateAllocation(members, allocated); err != nil {
		return nil, err
	}

	result, err := s.store.CreatePool(ctx, year, allocated)
	if err != nil {
		return nil, err
	}

	s.publish(events.TopicPoolCreated, events.PoolCreated{
		PoolID:        result.ID,
		Year:          result.Year,
		MemberCount:   len(result.Members),
		TotalCBBefore: result.TotalCBBefore,
		TotalCBAfter:  result.TotalCBAfter,
		OccurredAt:    time.Now(),
	})
	return result, nil
}

func (s *Service) publish(topic string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("[WARN] publish %s event: %v", topic, err)
	}
}
