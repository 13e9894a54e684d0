package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trkart/internal/models"
)

// atomicCardRepo is an in-memory CardRepository whose ApplyBalanceDelta
// honors the conditional-update contract atomically, mimicking what
// the single UPDATE statement guarantees. FindByIDForUpdate hands out
// snapshots without blocking, which is the worst case for the engine:
// both racers see the same balance and both pass feasibility.
type atomicCardRepo struct {
	mu    sync.Mutex
	cards map[int64]*models.Card
}

func newAtomicCardRepo(cards ...*models.Card) *atomicCardRepo {
	r := &atomicCardRepo{cards: make(map[int64]*models.Card)}
	for _, c := range cards {
		copied := *c
		r.cards[c.ID] = &copied
	}
	return r
}

func (r *atomicCardRepo) Create(_ context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *card
	r.cards[card.ID] = &copied
	return nil
}

func (r *atomicCardRepo) FindByID(_ context.Context, id int64) (*models.Card, error) {
	return r.snapshot(id)
}

func (r *atomicCardRepo) FindByIDForUpdate(_ context.Context, id int64) (*models.Card, error) {
	return r.snapshot(id)
}

func (r *atomicCardRepo) snapshot(id int64) (*models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *card
	return &copied, nil
}

func (r *atomicCardRepo) ListByCustomer(_ context.Context, customerID int64) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Card
	for _, c := range r.cards {
		if c.CustomerID == customerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *atomicCardRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, id)
	return nil
}

func (r *atomicCardRepo) GetBalance(_ context.Context, id int64) (decimal.Decimal, error) {
	card, err := r.snapshot(id)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Balance, nil
}

func (r *atomicCardRepo) ApplyBalanceDelta(_ context.Context, id int64, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[id]
	if !ok {
		return models.ErrNotFound
	}
	next := card.Balance.Add(delta)
	if next.IsNegative() {
		return models.ErrBalanceConstraint
	}
	card.Balance = next
	return nil
}

// noopTransactionRepo records nothing; the test under race cares only
// about the balance outcome.
type noopTransactionRepo struct{}

func (noopTransactionRepo) Create(_ context.Context, _ *models.Transaction) error { return nil }
func (noopTransactionRepo) LinkCounterpart(_ context.Context, _, _ int64) error   { return nil }
func (noopTransactionRepo) ListByCard(_ context.Context, _ int64) ([]models.Transaction, error) {
	return nil, nil
}
func (noopTransactionRepo) ListByCustomer(_ context.Context, _ int64) ([]models.Transaction, error) {
	return nil, nil
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	// Two debits of 80.00 race against a balance of 100.00. Both see
	// the same snapshot and both pass feasibility; the conditional
	// balance update must let exactly one through.
	identity := models.Identity{CustomerID: 7}
	cardRepo := newAtomicCardRepo(testCard(1, 7, "100.00"))
	svc := NewTransactionService(nil)
	amount := decimal.RequireFromString("80.00")

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.performCreate(context.Background(), cardRepo, noopTransactionRepo{},
				identity, 1, models.TransactionTypePay, amount, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, denials int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var svcErr *ServiceError
		require.True(t, errors.As(err, &svcErr), "unexpected error type: %v", err)
		assert.Equal(t, ErrCodeTransactionDenied, svcErr.Code)
		denials++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, denials)

	balance, err := cardRepo.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("20.00")),
		"balance is %s, want 20.00", balance)
}

func TestConcurrentCreditsAllApply(t *testing.T) {
	identity := models.Identity{CustomerID: 7}
	cardRepo := newAtomicCardRepo(testCard(1, 7, "0.00"))
	svc := NewTransactionService(nil)
	amount := decimal.RequireFromString("10.00")

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.performCreate(context.Background(), cardRepo, noopTransactionRepo{},
				identity, 1, models.TransactionTypeLoad, amount, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	balance, err := cardRepo.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("80.00")),
		"balance is %s, want 80.00", balance)
}
