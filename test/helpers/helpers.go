// test/helpers/helpers.go
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bengkelpos/pos-be/internal/adapters/db"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
	"github.com/bengkelpos/pos-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_pos",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_pos",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for database to be ready
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// ResetRecords clears all records and rewinds the id counters between tests.
func ResetRecords(t *testing.T, database *db.Database) {
	t.Helper()

	ctx := context.Background()
	_, err := database.Exec(ctx, "TRUNCATE records")
	require.NoError(t, err)
	_, err = database.Exec(ctx, "UPDATE collection_ids SET next_id = 0")
	require.NoError(t, err)
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-pos",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_pos",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Inventory: config.InventoryConfig{
			LowStockThreshold: 5,
			SnapshotTTL:       time.Hour,
			ReportTTL:         10 * time.Minute,
		},
		FileProcessing: config.FileProcessingConfig{
			ExcelMaxSizeMB:    50,
			ProcessingTimeout: 5 * time.Minute,
			TempDir:           "/tmp",
			CleanupInterval:   time.Hour,
			LogRetention:      90 * 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestItem creates a test inventory item
func CreateTestItem(overrides ...func(*domain.InventoryItem)) *domain.InventoryItem {
	item := &domain.InventoryItem{
		Name:      "Busi NGK CPR9EA-9",
		Price:     25000,
		Stock:     10,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(item)
	}

	return item
}

// CreateTestCustomer creates a test customer
func CreateTestCustomer(overrides ...func(*domain.Customer)) *domain.Customer {
	customer := &domain.Customer{
		Name:      "Pak Budi",
		Phone:     "0812-3456-7890",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(customer)
	}

	return customer
}

// CreateTestSale creates a test sale with a single line
func CreateTestSale(overrides ...func(*domain.Sale)) *domain.Sale {
	sale := &domain.Sale{
		CustomerID: 0,
		Items: []domain.CartLine{
			{ItemID: 1, Name: "Busi NGK CPR9EA-9", Price: 25000, Quantity: 2},
		},
		Total: 50000,
		Date:  time.Now().UTC(),
	}

	for _, override := range overrides {
		override(sale)
	}

	return sale
}

// memRecord is one stored document with its insertion timestamp.
type memRecord struct {
	data      json.RawMessage
	createdAt time.Time
}

// MemStore is an in-memory ports.RecordStore for unit tests. It mirrors the
// Postgres adapter's semantics: monotonic never-reused ids, idempotent
// deletes and transactional RunAtomic with rollback on error.
type MemStore struct {
	mu      sync.Mutex
	records map[string]map[int64]memRecord
	nextID  map[string]int64
}

// NewMemStore creates an empty in-memory record store
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]map[int64]memRecord),
		nextID:  make(map[string]int64),
	}
}

func (m *MemStore) Create(ctx context.Context, collection string, data json.RawMessage) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(collection, data)
}

func (m *MemStore) create(collection string, data json.RawMessage) (int64, error) {
	id := m.nextID[collection] + 1
	m.nextID[collection] = id

	stamped, err := stampID(data, id)
	if err != nil {
		return 0, err
	}

	if m.records[collection] == nil {
		m.records[collection] = make(map[int64]memRecord)
	}
	m.records[collection][id] = memRecord{data: stamped, createdAt: time.Now().UTC()}
	return id, nil
}

func (m *MemStore) Get(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.data, nil
}

func (m *MemStore) List(ctx context.Context, collection string, params ports.ListParams) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []int64
	for id, rec := range m.records[collection] {
		if params.Since != nil && rec.createdAt.Before(*params.Since) {
			continue
		}
		if params.Until != nil && !rec.createdAt.Before(*params.Until) {
			continue
		}
		ids = append(ids, id)
	}

	// Store order is ascending id
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.records[collection][id].data)
	}
	return out, nil
}

func (m *MemStore) Update(ctx context.Context, collection string, id int64, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamped, err := stampID(data, id)
	if err != nil {
		return err
	}

	if m.records[collection] == nil {
		m.records[collection] = make(map[int64]memRecord)
	}

	rec, ok := m.records[collection][id]
	if !ok {
		rec = memRecord{createdAt: time.Now().UTC()}
	}
	rec.data = stamped
	m.records[collection][id] = rec

	if m.nextID[collection] < id {
		m.nextID[collection] = id
	}
	return nil
}

// Backdate rewrites a record's creation time so tests can exercise
// date-range filtering and age-based cleanup without sleeping.
func (m *MemStore) Backdate(collection string, id int64, createdAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[collection][id]; ok {
		rec.createdAt = createdAt
		m.records[collection][id] = rec
	}
}

func (m *MemStore) Delete(ctx context.Context, collection string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records[collection], id)
	return nil
}

func (m *MemStore) DeleteOlderThan(ctx context.Context, collection string, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, rec := range m.records[collection] {
		if rec.createdAt.Before(cutoff) {
			delete(m.records[collection], id)
			deleted++
		}
	}
	return deleted, nil
}

// RunAtomic executes fn against a snapshot-backed view of the store. On
// error the store is restored to its pre-transaction state.
func (m *MemStore) RunAtomic(ctx context.Context, fn func(ops ports.RecordOps) error) error {
	m.mu.Lock()

	snapshot := make(map[string]map[int64]memRecord, len(m.records))
	for coll, recs := range m.records {
		cp := make(map[int64]memRecord, len(recs))
		for id, rec := range recs {
			cp[id] = rec
		}
		snapshot[coll] = cp
	}
	nextSnapshot := make(map[string]int64, len(m.nextID))
	for coll, id := range m.nextID {
		nextSnapshot[coll] = id
	}
	m.mu.Unlock()

	if err := fn(txOps{m}); err != nil {
		m.mu.Lock()
		m.records = snapshot
		m.nextID = nextSnapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// txOps routes transactional operations back to the store
type txOps struct {
	store *MemStore
}

func (t txOps) Create(ctx context.Context, collection string, data json.RawMessage) (int64, error) {
	return t.store.Create(ctx, collection, data)
}

func (t txOps) Get(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	return t.store.Get(ctx, collection, id)
}

func (t txOps) List(ctx context.Context, collection string, params ports.ListParams) ([]json.RawMessage, error) {
	return t.store.List(ctx, collection, params)
}

func (t txOps) Update(ctx context.Context, collection string, id int64, data json.RawMessage) error {
	return t.store.Update(ctx, collection, id, data)
}

func (t txOps) Delete(ctx context.Context, collection string, id int64) error {
	return t.store.Delete(ctx, collection, id)
}

func stampID(data json.RawMessage, id int64) (json.RawMessage, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc["id"] = id
	return json.Marshal(doc)
}

var _ ports.RecordStore = (*MemStore)(nil)
