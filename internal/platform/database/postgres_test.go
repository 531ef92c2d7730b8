package database

import (
	"contest_hub/internal/platform/config"
	"context"
	"testing"
)

func TestConnectUnreachable(t *testing.T) {
	cfg := &config.Config{
		DBHost:    "127.0.0.1",
		DBPort:    "1",
		DBName:    "contest_hub_db",
		DBConnStr: "host=127.0.0.1 port=1 user=user password=password dbname=contest_hub_db sslmode=disable connect_timeout=1",
	}

	db, err := Connect(context.Background(), cfg)
	if err == nil {
		db.Close()
		t.Fatal("Expected an error for an unreachable database")
	}
	if db != nil {
		t.Error("Expected no handle on failure")
	}
}
