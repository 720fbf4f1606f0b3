package barstore

import (
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetBarStore implements the StoreManager interface.
func (m *MockStoreManager) GetBarStore() contract.BarStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.BarStore)
	return store
}

// MockBarStore is a mock implementation of BarStore for testing.
type MockBarStore struct {
	mock.Mock
}

var _ contract.BarStore = &MockBarStore{} // Compile-time check

// SaveSeries implements the BarStore interface.
func (m *MockBarStore) SaveSeries(series schema.StoredSeries) error {
	args := m.Called(series)
	return args.Error(0)
}

// AppendBar implements the BarStore interface.
func (m *MockBarStore) AppendBar(name string, kind schema.SeriesKind, item schema.DataItem) error {
	args := m.Called(name, kind, item)
	return args.Error(0)
}

// LoadSeries implements the BarStore interface.
func (m *MockBarStore) LoadSeries(name string) (schema.StoredSeries, error) {
	args := m.Called(name)
	return args.Get(0).(schema.StoredSeries), args.Error(1)
}

// ListSeries implements the BarStore interface.
func (m *MockBarStore) ListSeries() ([]schema.SeriesInfo, error) {
	args := m.Called()
	infos, _ := args.Get(0).([]schema.SeriesInfo)
	return infos, args.Error(1)
}

// DeleteSeries implements the BarStore interface.
func (m *MockBarStore) DeleteSeries(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// GetStatus implements the BarStore interface.
func (m *MockBarStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the BarStore interface.
func (m *MockBarStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
