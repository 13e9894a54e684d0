// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"trkart/internal/models"
)

// MockCustomerRepository is a mock CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

// NewMockCustomerRepository creates a MockCustomerRepository bound to t
func NewMockCustomerRepository(t *testing.T) *MockCustomerRepository {
	m := &MockCustomerRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

// MockCardRepository is a mock CardRepository
type MockCardRepository struct {
	mock.Mock
}

// NewMockCardRepository creates a MockCardRepository bound to t
func NewMockCardRepository(t *testing.T) *MockCardRepository {
	m := &MockCardRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockCardRepository) Create(ctx context.Context, card *models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) FindByID(ctx context.Context, id int64) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Card, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardRepository) GetBalance(ctx context.Context, id int64) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCardRepository) ApplyBalanceDelta(ctx context.Context, id int64, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// MockTransactionRepository is a mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a MockTransactionRepository bound to t
func NewMockTransactionRepository(t *testing.T) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) LinkCounterpart(ctx context.Context, id, counterpartID int64) error {
	args := m.Called(ctx, id, counterpartID)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByCard(ctx context.Context, cardID int64) ([]models.Transaction, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByCustomer(ctx context.Context, customerID int64) ([]models.Transaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}
