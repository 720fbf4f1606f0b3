package barstore

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/huangsam/chartaxis/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreManager holds the process-wide bar store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	bars         contract.BarStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetBarStore returns the bar store, or nil before InitStore.
func (mgr *StoreManager) GetBarStore() contract.BarStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.bars
}

// GetDBFilePath returns the path to the SQLite DB file for bar storage.
func GetDBFilePath() string {
	return contract.GetDBFilePath()
}

// InitStore initializes the global bar store once.
func InitStore(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewBarStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize bar store: %w", err)
			return
		}
		Manager.Lock()
		Manager.bars = store
		Manager.Unlock()
	})

	return initErr
}

// CloseStore should be called on application shutdown.
func CloseStore() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.bars != nil {
			_ = Manager.bars.Close()
		}
	})
}

// ClearStore removes every stored series for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the store tables and the migration bookkeeping.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(driverName(backend), connStr, barsTable, seriesTable, "schema_migrations")

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(driver, connStr string, tables ...string) error {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
