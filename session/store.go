package session

import (
	"errors"
	"time"

	"github.com/alexedwards/scs/gormstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"gorm.io/gorm"
)

func NewMemoryStore(cleanupInterval time.Duration) *memstore.MemStore {
	return memstore.NewWithCleanupInterval(cleanupInterval)
}

// NewDatabaseStore keeps session data in the "sessions" table, creating it if
// needed. Expired rows are purged every cleanupInterval; zero disables that.
func NewDatabaseStore(db *gorm.DB, cleanupInterval time.Duration) (*gormstore.GORMStore, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	return gormstore.NewWithCleanupInterval(db, cleanupInterval)
}

type cleanupStopper interface {
	StopCleanup()
}

var (
	_ scs.Store      = (*memstore.MemStore)(nil)
	_ scs.Store      = (*gormstore.GORMStore)(nil)
	_ cleanupStopper = (*memstore.MemStore)(nil)
	_ cleanupStopper = (*gormstore.GORMStore)(nil)
)
