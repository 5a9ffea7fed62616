package testutil

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"charity-events/config"
	"charity-events/internal/database"
)

// Setup connects to the test Postgres and Redis and applies the schema.
func Setup() (*pgxpool.Pool, *redis.Client, func(), error) {
	cfg := config.LoadTestConfig()

	testDB, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	if err := database.Migrate(context.Background(), testDB); err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to migrate test database: %w", err)
	}
	log.Println("Test database connected successfully")

	testRdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		testDB.Close()
		return nil, nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	log.Println("Test redis connected successfully")

	cleanup := func() {
		testDB.Close()
		testRdb.Close()
		log.Println("Test database and redis closed")
	}

	return testDB, testRdb, cleanup, nil
}

// SetupRedisOnly is for tests that touch nothing but Redis.
func SetupRedisOnly() (*redis.Client, func(), error) {
	cfg := config.LoadTestConfig()
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	return rdb, func() { rdb.Close() }, nil
}
