package barstore

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/chartaxis/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BarStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "bars.db")
	store, err := NewBarStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	store.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBarStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	series := schema.StoredSeries{
		Name: "btc",
		Kind: schema.CandlestickSeries,
		Items: []schema.DataItem{
			schema.OHLC("2024-01-02", 1, 3, 0.5, 2),
			schema.OHLC("2024-01-03", 2, 4, 1.5, 3),
			schema.Whitespace("2024-01-04"),
		},
	}
	require.NoError(t, store.SaveSeries(series))

	loaded, err := store.LoadSeries("btc")
	require.NoError(t, err)
	assert.Equal(t, series, loaded)

	// Saving again replaces the bars instead of merging them
	series.Items = series.Items[:1]
	require.NoError(t, store.SaveSeries(series))
	loaded, err = store.LoadSeries("btc")
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
}

func TestBarStoreAppendBar(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AppendBar("eth", schema.LineSeries, schema.SingleValue(1.0, 10)))
	require.NoError(t, store.AppendBar("eth", schema.LineSeries, schema.SingleValue(2.0, 20)))
	// Same raw time amends the stored bar and keeps its position
	require.NoError(t, store.AppendBar("eth", schema.LineSeries, schema.SingleValue(1.0, 15)))

	loaded, err := store.LoadSeries("eth")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, schema.LineSeries, loaded.Kind)
	assert.Equal(t, 1.0, loaded.Items[0].Time)
	assert.Equal(t, 15.0, *loaded.Items[0].Value)
	assert.Equal(t, 20.0, *loaded.Items[1].Value)
}

func TestBarStoreListAndDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveSeries(schema.StoredSeries{Name: "b", Kind: schema.LineSeries, Items: []schema.DataItem{schema.SingleValue(1.0, 1)}}))
	require.NoError(t, store.SaveSeries(schema.StoredSeries{Name: "a", Kind: schema.HistogramSeries}))

	infos, err := store.ListSeries()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, 0, infos[0].BarCount)
	assert.Equal(t, "b", infos[1].Name)
	assert.Equal(t, 1, infos[1].BarCount)
	assert.Equal(t, int64(1700000000), infos[1].UpdatedAt.Unix())

	require.NoError(t, store.DeleteSeries("b"))
	_, err = store.LoadSeries("b")
	assert.True(t, errors.Is(err, ErrSeriesNotFound))

	err = store.DeleteSeries("b")
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestBarStoreStatus(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveSeries(schema.StoredSeries{
		Name:  "s",
		Kind:  schema.LineSeries,
		Items: []schema.DataItem{schema.SingleValue(1.0, 1), schema.SingleValue(2.0, 2)},
	}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, uint(2), status.SchemaVersion)
	assert.Equal(t, 1, status.TotalSeries)
	assert.Equal(t, 2, status.TotalBars)
	assert.Equal(t, int64(1700000000), status.LastUpdateTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestBarStoreValidation(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.SaveSeries(schema.StoredSeries{Name: "  "}))
	assert.Error(t, store.AppendBar("", schema.LineSeries, schema.SingleValue(1.0, 1)))
}

func TestNoneBackend(t *testing.T) {
	store, err := NewBarStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.SaveSeries(schema.StoredSeries{Name: "x"}))
	assert.NoError(t, store.AppendBar("x", schema.LineSeries, schema.SingleValue(1.0, 1)))
	_, err = store.LoadSeries("x")
	assert.ErrorIs(t, err, ErrSeriesNotFound)

	infos, err := store.ListSeries()
	assert.NoError(t, err)
	assert.Empty(t, infos)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := NewBarStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestMigrateStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateStore(schema.SQLiteBackend, dbPath, -1))
	res, err := runMigrations(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, uint(2), res.To)

	res, err = runMigrations(schema.SQLiteBackend, dbPath, 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(2), res.From)
	assert.Equal(t, uint(1), res.To)

	res, err = runMigrations(schema.SQLiteBackend, dbPath, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(0), res.To)

	_, err = runMigrations(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}

func TestBarKey(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string day", "2024-01-02", "2024-01-02"},
		{"business day", schema.BusinessDay{Year: 2024, Month: 1, Day: 2}, "2024-01-02"},
		{"decoded day", map[string]any{"year": 2024.0, "month": 1.0, "day": 2.0}, "2024-01-02"},
		{"float", 1.5, "1.5"},
		{"int", 1700000000, "1700000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BarKey(tt.in))
		})
	}
}

func TestStoreLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "global.db")
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test

	require.NoError(t, InitStore(schema.SQLiteBackend, dbPath))
	require.NoError(t, InitStore(schema.SQLiteBackend, dbPath))
	assert.NotNil(t, Manager.GetBarStore())

	CloseStore()
	CloseStore()

	assert.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
	assert.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, "")) // already gone
	assert.Error(t, ClearStore(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	assert.Error(t, ClearStore(schema.DatabaseBackend("oracle"), "", ""))
}

func TestMockStore(t *testing.T) {
	bars := &MockBarStore{}
	bars.On("LoadSeries", "x").Return(schema.StoredSeries{Name: "x"}, nil)
	mgr := &MockStoreManager{}
	mgr.On("GetBarStore").Return(bars)

	got, err := mgr.GetBarStore().LoadSeries("x")
	assert.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	bars.AssertExpectations(t)
	mock.AssertExpectationsForObjects(t, mgr)
}
