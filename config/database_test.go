package config

import (
	"strings"
	"testing"
)

func TestBuildDatabaseConfig_TCP(t *testing.T) {
	dsn := buildDatabaseConfig("app", "secret", "127.0.0.1", "3306", "sales")
	if !strings.HasPrefix(dsn, "app:secret@tcp(127.0.0.1:3306)/sales?") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
	// conditional-update guards need matched-rows semantics from the driver
	if !strings.Contains(dsn, "clientFoundRows=true") {
		t.Fatalf("dsn missing clientFoundRows: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn missing parseTime: %s", dsn)
	}
}

func TestBuildDatabaseConfig_CloudSQLSocket(t *testing.T) {
	dsn := buildDatabaseConfig("app", "secret", "/cloudsql/project:region:instance", "", "sales")
	if !strings.Contains(dsn, "@unix(/cloudsql/project:region:instance)/sales") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
	if !strings.Contains(dsn, "clientFoundRows=true") {
		t.Fatalf("dsn missing clientFoundRows: %s", dsn)
	}
}
