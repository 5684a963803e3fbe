package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pitwall/config"
	"pitwall/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, EVENTS_CACHE_INDEX)
}

func TestDB_StructCreation(t *testing.T) {
	log := logger.New("test")

	db := &DB{
		log: log,
	}

	assert.NotNil(t, db)
	assert.Equal(t, log, db.log)
	assert.Nil(t, db.SQL)
}

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "pitwall",
		DatabasePassword: "secret",
		DatabaseName:     "pitwall",
	}

	assert.Equal(t,
		"host=db port=5432 user=pitwall password=secret dbname=pitwall sslmode=disable TimeZone=UTC",
		DSN(cfg),
	)

	cfg.DatabaseSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestInitializePostgresDB_MissingSettings(t *testing.T) {
	tests := []struct {
		name     string
		config   config.Config
		errorMsg string
	}{
		{name: "No host", config: config.Config{}, errorMsg: "database host is empty"},
		{name: "No name", config: config.Config{DatabaseHost: "db"}, errorMsg: "database name is empty"},
		{
			name:     "No user",
			config:   config.Config{DatabaseHost: "db", DatabaseName: "pitwall"},
			errorMsg: "database user is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{log: logger.New("test")}
			err := db.initializePostgresDB(&gorm.Config{}, tt.config)
			assert.EqualError(t, err, tt.errorMsg)
		})
	}
}

func TestInitializeCacheDB_MissingAddress(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeCacheDB(config.Config{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")
}

func TestNewWithSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	db := NewWithSQL(gormDB)
	assert.NotNil(t, db.SQLWithContext(context.Background()))

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheBuilder_KeyAndValidation(t *testing.T) {
	id := uuid.New()

	builder := NewCacheBuilder(nil, id).WithHash("revoked")
	assert.Equal(t, "revoked:"+id.String(), builder.Key())

	err := builder.WithValue("1").WithTTL(time.Minute).Set()
	assert.EqualError(t, err, "cache client is nil")
}

func TestMigrationFiles(t *testing.T) {
	dir := filepath.Join("..", "..", MIGRATION_PATH)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("migrations directory not present")
	}

	migrations, err := MigrationSource(dir).FindMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for _, m := range migrations {
		assert.NotEmpty(t, m.Up, "migration %s has no up statements", m.Id)
		assert.NotEmpty(t, m.Down, "migration %s has no down statements", m.Id)
	}
}

func TestLimiterStore_EmptyKeyShortCircuits(t *testing.T) {
	store := NewLimiterStore(nil)

	val, err := store.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)

	assert.NoError(t, store.Set("", []byte("1"), time.Minute))
	assert.NoError(t, store.Set("k", nil, time.Minute))
	assert.NoError(t, store.Delete(""))
	assert.NoError(t, store.Close())
	assert.Equal(t, "ratelimit:10.0.0.1", limiterKey("10.0.0.1"))
}
