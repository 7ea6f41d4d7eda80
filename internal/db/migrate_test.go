package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestMigrateSQLiteCreatesLedgerTables(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"token_accounts", "token_transactions", "experiences", "referral_codes", "referrals"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	for _, column := range []string{"user_id", "title", "amount", "created_at"} {
		if !conn.Migrator().HasColumn("token_transactions", column) {
			t.Fatalf("token_transactions missing column %s", column)
		}
	}
}

func TestMigrateSQLiteBackfillsExistingAccountsTable(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errExec := conn.Exec(`
		CREATE TABLE token_accounts (
			user_id integer primary key,
			created_at datetime,
			updated_at datetime
		)
	`).Error; errExec != nil {
		t.Fatalf("create legacy token_accounts table: %v", errExec)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	if !conn.Migrator().HasColumn("token_accounts", "balance") {
		t.Fatalf("token_accounts missing column balance after backfill migration")
	}
}

func TestMigrateNilConnection(t *testing.T) {
	if errMigrate := Migrate(nil); errMigrate == nil {
		t.Fatalf("expected error for nil connection")
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/careerhub": DialectPostgres,
		"host=localhost user=u dbname=careerhub":  DialectPostgres,
		"file:data/careerhub.db":                  DialectSQLite,
		"sqlite://data/careerhub.db":              DialectSQLite,
		"careerhub.db":                            DialectSQLite,
	}
	for dsn, want := range cases {
		got, errDetect := detectDialectFromDSN(dsn)
		if errDetect != nil {
			t.Fatalf("detect %q: %v", dsn, errDetect)
		}
		if got != want {
			t.Fatalf("detect %q: got %s want %s", dsn, got, want)
		}
	}
	if _, errDetect := detectDialectFromDSN("mysql://localhost/x"); errDetect == nil {
		t.Fatalf("expected error for unsupported dsn")
	}
}
