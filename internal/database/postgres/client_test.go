// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"testing"
	"time"

	dbi "github.com/drapcode/exchange-engine/internal/database/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestBuildConnectionString(t *testing.T) {
	got := buildConnectionString(&dbi.PostgreSQLConfig{
		Host:           "localhost",
		Port:           5432,
		Username:       "postgres",
		Password:       "secret",
		Database:       "builder",
		ConnectTimeout: 5 * time.Second,
		Schema:         "designer",
	})
	assert.Equal(t, "host=localhost port=5432 dbname=builder user=postgres password=secret sslmode=disable connect_timeout=5 search_path=designer", got)
}

func TestBuildConnectionStringDefaults(t *testing.T) {
	got := buildConnectionString(&dbi.PostgreSQLConfig{Host: "pg", Port: 5433, Database: "builder", ConnectTimeout: 500 * time.Millisecond})
	assert.Equal(t, "host=pg port=5433 dbname=builder sslmode=disable", got)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	config := &dbi.PostgreSQLConfig{
		Host:            "localhost",
		Port:            5432,
		Username:        "postgres",
		Password:        "postgres",
		Database:        "exchange_builder_test",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}

	client, err := NewClient(ctx, config)
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}
	assert.NotNil(t, client.DB())
}
