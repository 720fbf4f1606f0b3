// Package barstore persists named series of raw bars.
package barstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/spf13/cast"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names created by the embedded migrations.
const (
	seriesTable = "chartaxis_series"
	barsTable   = "chartaxis_bars"
)

// ErrSeriesNotFound is returned when a named series is not stored.
var ErrSeriesNotFound = errors.New("series not found")

// BarStoreImpl handles durable storage operations using various database backends.
type BarStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	now     func() time.Time
}

var _ contract.BarStore = &BarStoreImpl{} // Compile-time check

// NewBarStore migrates the backend to the latest schema and returns a store over it.
func NewBarStore(backend schema.DatabaseBackend, connStr string) (*BarStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &BarStoreImpl{backend: backend, connStr: connStr, now: time.Now}, nil
	}
	if _, ok := schema.ValidStoreBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if _, err := runMigrations(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to prepare bar store schema: %w", err)
	}
	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}
	return &BarStoreImpl{db: db, backend: backend, connStr: connStr, now: time.Now}, nil
}

// SaveSeries replaces every bar of the named series.
func (bs *BarStoreImpl) SaveSeries(series schema.StoredSeries) error {
	if bs.disabled() {
		return nil
	}
	if err := validateSeriesName(series.Name); err != nil {
		return err
	}
	return bs.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(bs.rebind(fmt.Sprintf("DELETE FROM %s WHERE series_name = ?", bs.quote(barsTable))), series.Name); err != nil {
			return fmt.Errorf("failed to clear bars of %s: %w", series.Name, err)
		}
		if err := bs.upsertSeries(tx, series.Name, series.Kind); err != nil {
			return err
		}
		for i, item := range series.Items {
			if err := bs.upsertBar(tx, series.Name, int64(i), item); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendBar inserts a bar after the stored ones, replacing any bar stored at the same raw time.
func (bs *BarStoreImpl) AppendBar(name string, kind schema.SeriesKind, item schema.DataItem) error {
	if bs.disabled() {
		return nil
	}
	if err := validateSeriesName(name); err != nil {
		return err
	}
	return bs.inTx(func(tx *sql.Tx) error {
		if err := bs.upsertSeries(tx, name, kind); err != nil {
			return err
		}
		var seq int64
		query := bs.rebind(fmt.Sprintf("SELECT COALESCE(MAX(seq), -1) + 1 FROM %s WHERE series_name = ?", bs.quote(barsTable)))
		if err := tx.QueryRow(query, name).Scan(&seq); err != nil {
			return fmt.Errorf("failed to read next position of %s: %w", name, err)
		}
		return bs.upsertBar(tx, name, seq, item)
	})
}

// LoadSeries returns the named series with its bars in stored order.
func (bs *BarStoreImpl) LoadSeries(name string) (schema.StoredSeries, error) {
	series := schema.StoredSeries{Name: name}
	if bs.disabled() {
		return series, fmt.Errorf("%w: %s (store backend is none)", ErrSeriesNotFound, name)
	}

	var kind string
	query := bs.rebind(fmt.Sprintf("SELECT series_kind FROM %s WHERE series_name = ?", bs.quote(seriesTable)))
	if err := bs.db.QueryRow(query, name).Scan(&kind); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return series, fmt.Errorf("%w: %s", ErrSeriesNotFound, name)
		}
		return series, fmt.Errorf("failed to load series %s: %w", name, err)
	}
	series.Kind = schema.SeriesKind(kind)

	query = bs.rebind(fmt.Sprintf("SELECT payload FROM %s WHERE series_name = ? ORDER BY seq", bs.quote(barsTable)))
	rows, err := bs.db.Query(query, name)
	if err != nil {
		return series, fmt.Errorf("failed to load bars of %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	series.Items = []schema.DataItem{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return series, fmt.Errorf("failed to scan bar of %s: %w", name, err)
		}
		var item schema.DataItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return series, fmt.Errorf("failed to decode bar of %s: %w", name, err)
		}
		series.Items = append(series.Items, item)
	}
	return series, rows.Err()
}

// ListSeries returns a summary of every stored series ordered by name.
func (bs *BarStoreImpl) ListSeries() ([]schema.SeriesInfo, error) {
	if bs.disabled() {
		return []schema.SeriesInfo{}, nil
	}
	query := fmt.Sprintf(`SELECT s.series_name, s.series_kind, s.updated_at, COUNT(b.bar_key)
		FROM %s s LEFT JOIN %s b ON b.series_name = s.series_name
		GROUP BY s.series_name, s.series_kind, s.updated_at
		ORDER BY s.series_name`, bs.quote(seriesTable), bs.quote(barsTable))
	rows, err := bs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	infos := []schema.SeriesInfo{}
	for rows.Next() {
		var info schema.SeriesInfo
		var kind string
		var updated int64
		if err := rows.Scan(&info.Name, &kind, &updated, &info.BarCount); err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		info.Kind = schema.SeriesKind(kind)
		info.UpdatedAt = time.Unix(updated, 0)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteSeries removes the named series and its bars.
func (bs *BarStoreImpl) DeleteSeries(name string) error {
	if bs.disabled() {
		return nil
	}
	return bs.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(bs.rebind(fmt.Sprintf("DELETE FROM %s WHERE series_name = ?", bs.quote(barsTable))), name); err != nil {
			return fmt.Errorf("failed to delete bars of %s: %w", name, err)
		}
		res, err := tx.Exec(bs.rebind(fmt.Sprintf("DELETE FROM %s WHERE series_name = ?", bs.quote(seriesTable))), name)
		if err != nil {
			return fmt.Errorf("failed to delete series %s: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrSeriesNotFound, name)
		}
		return nil
	})
}

// Close closes the underlying DB connection.
func (bs *BarStoreImpl) Close() error {
	if bs.db != nil {
		return bs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the bar store.
func (bs *BarStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(bs.backend),
		Connected: bs.db != nil,
	}
	if bs.disabled() {
		return status, nil
	}

	// Missing migration bookkeeping only means version 0
	var version int64
	if err := bs.db.QueryRow("SELECT version FROM schema_migrations LIMIT 1").Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}

	if err := bs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", bs.quote(seriesTable))).Scan(&status.TotalSeries); err != nil {
		return status, fmt.Errorf("failed to get total series: %w", err)
	}
	if err := bs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", bs.quote(barsTable))).Scan(&status.TotalBars); err != nil {
		return status, fmt.Errorf("failed to get total bars: %w", err)
	}
	if status.TotalSeries > 0 {
		var lastTs int64
		if err := bs.db.QueryRow(fmt.Sprintf("SELECT MAX(updated_at) FROM %s", bs.quote(seriesTable))).Scan(&lastTs); err != nil {
			return status, fmt.Errorf("failed to get last update time: %w", err)
		}
		status.LastUpdateTime = time.Unix(lastTs, 0)
	}

	status.TableSizeBytes = bs.estimateSize(status.TotalBars)
	return status, nil
}

// estimateSize asks the backend for the size of the store tables, falling back to a rough estimate.
func (bs *BarStoreImpl) estimateSize(totalBars int) int64 {
	fallback := int64(totalBars) * 200
	var size sql.NullInt64
	switch bs.backend {
	case schema.SQLiteBackend:
		if err := bs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		// Use information_schema for MySQL
		cfg, err := mysql.ParseDSN(bs.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		query := "SELECT SUM(data_length + index_length) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)"
		if err := bs.db.QueryRow(query, cfg.DBName, seriesTable, barsTable).Scan(&size); err != nil {
			return fallback
		}
	case schema.PostgreSQLBackend:
		query := "SELECT pg_total_relation_size($1) + pg_total_relation_size($2)"
		if err := bs.db.QueryRow(query, seriesTable, barsTable).Scan(&size); err != nil {
			return fallback
		}
	}
	if !size.Valid {
		return fallback
	}
	return size.Int64
}

func (bs *BarStoreImpl) disabled() bool {
	return bs.backend == schema.NoneBackend || bs.db == nil
}

func (bs *BarStoreImpl) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := bs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (bs *BarStoreImpl) upsertSeries(tx *sql.Tx, name string, kind schema.SeriesKind) error {
	var query string
	switch bs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (series_name, series_kind, updated_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE series_kind = new.series_kind, updated_at = new.updated_at`, bs.quote(seriesTable))
	default: // SQLite and PostgreSQL
		query = bs.rebind(fmt.Sprintf(`INSERT INTO %s (series_name, series_kind, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (series_name) DO UPDATE SET series_kind = excluded.series_kind, updated_at = excluded.updated_at`, bs.quote(seriesTable)))
	}
	if _, err := tx.Exec(query, name, string(kind), bs.now().Unix()); err != nil {
		return fmt.Errorf("failed to save series %s: %w", name, err)
	}
	return nil
}

func (bs *BarStoreImpl) upsertBar(tx *sql.Tx, name string, seq int64, item schema.DataItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode bar of %s: %w", name, err)
	}
	var query string
	switch bs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (series_name, bar_key, seq, payload) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload`, bs.quote(barsTable))
	default: // SQLite and PostgreSQL
		query = bs.rebind(fmt.Sprintf(`INSERT INTO %s (series_name, bar_key, seq, payload) VALUES (?, ?, ?, ?)
			ON CONFLICT (series_name, bar_key) DO UPDATE SET payload = excluded.payload`, bs.quote(barsTable)))
	}
	if _, err := tx.Exec(query, name, BarKey(item.Time), seq, string(payload)); err != nil {
		return fmt.Errorf("failed to save bar of %s: %w", name, err)
	}
	return nil
}

// rebind rewrites ? placeholders into the backend's placeholder syntax.
func (bs *BarStoreImpl) rebind(query string) string {
	if bs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quote returns the properly quoted table name for the backend.
func (bs *BarStoreImpl) quote(name string) string {
	if bs.backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// BarKey returns the identity of a raw time inside a stored series.
// Calendar days given as strings, structs or decoded maps share one key.
func BarKey(t any) string {
	switch v := t.(type) {
	case schema.BusinessDay:
		return v.String()
	case *schema.BusinessDay:
		if v != nil {
			return v.String()
		}
	case map[string]any:
		year, yerr := cast.ToIntE(v["year"])
		month, merr := cast.ToIntE(v["month"])
		day, derr := cast.ToIntE(v["day"])
		if yerr == nil && merr == nil && derr == nil {
			return schema.BusinessDay{Year: year, Month: month, Day: day}.String()
		}
	}
	if f, err := cast.ToFloat64E(t); err == nil && t != nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return schema.FormatOriginalTime(t)
}

func validateSeriesName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("series name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("series name %q exceeds 255 characters", name)
	}
	return nil
}
