// Package testutil builds throwaway SQLite databases with the
// application schema and inserts fixture rows with plain SQL.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/tour-reservation/internal/database"
)

// sqliteSchema mirrors internal/database/schema.sql in SQLite syntax.
const sqliteSchema = `
CREATE TABLE users (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    username       TEXT     NOT NULL UNIQUE,
    password_hash  TEXT     NOT NULL,
    firstname      TEXT     NULL,
    lastname       TEXT     NULL,
    email          TEXT     NULL UNIQUE,
    gender         INTEGER  NULL,
    dob            DATE     NULL,
    national_code  TEXT     NULL UNIQUE,
    is_admin       BOOLEAN  NOT NULL DEFAULT 0,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);

CREATE TABLE wallets (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      INTEGER  NOT NULL UNIQUE REFERENCES users (id),
    balance      INTEGER  NOT NULL DEFAULT 0 CHECK (balance >= 0),
    transfer_id  TEXT     NOT NULL UNIQUE,
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);

CREATE TABLE events (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    title            TEXT     NOT NULL,
    source           TEXT     NOT NULL,
    destination      TEXT     NOT NULL,
    start_date       DATE     NOT NULL,
    end_date         DATE     NOT NULL,
    price_per_adult  INTEGER  NOT NULL,
    price_per_child  INTEGER  NOT NULL,
    capacity         INTEGER  NOT NULL,
    status           BOOLEAN  NOT NULL DEFAULT 1,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE reservations (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id          INTEGER  NOT NULL REFERENCES users (id),
    event_id         INTEGER  NOT NULL REFERENCES events (id),
    num_of_adults    INTEGER  NOT NULL,
    num_of_children  INTEGER  NOT NULL,
    num_of_beds      INTEGER  NOT NULL,
    total_price      INTEGER  NOT NULL,
    status           BOOLEAN  NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);

CREATE TABLE passengers (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id        INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    firstname      TEXT    NOT NULL,
    lastname       TEXT    NOT NULL,
    gender         INTEGER NOT NULL,
    dob            DATE    NULL,
    national_code  TEXT    NOT NULL
);

CREATE TABLE refresh_tokens (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    token_hash  TEXT     NOT NULL UNIQUE,
    expires_at  DATETIME NOT NULL,
    revoked_at  DATETIME NULL,
    created_at  DATETIME NOT NULL
);
`

// NewDB returns an empty in-memory database with the schema applied.
// The pool holds a single connection (every connection to ":memory:" is
// a separate database), so concurrent transactions wait in database/sql
// and run one after another.  Concurrency tests on this database check
// outcomes under interleaved goroutines, not row-lock behaviour; overdraw
// and lock order are guarded by the conditional UPDATEs and the
// ascending-id write order, which have their own tests.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, stmt := range database.Statements(sqliteSchema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

var fixtureTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// InsertUser adds a user with a placeholder password hash.
func InsertUser(t *testing.T, db *sql.DB, username string) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (username, password_hash, is_admin, created_at, updated_at) VALUES (?, 'x', 0, ?, ?)`,
		username, fixtureTime, fixtureTime)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return lastID(t, res)
}

// InsertWallet adds a wallet for userID and returns its id.
func InsertWallet(t *testing.T, db *sql.DB, userID uint64, balance int64, transferID string) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO wallets (user_id, balance, transfer_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		userID, balance, transferID, fixtureTime, fixtureTime)
	if err != nil {
		t.Fatalf("insert wallet: %v", err)
	}
	return lastID(t, res)
}

// Event describes an events row.  StartDate is a YYYY-MM-DD string.
type Event struct {
	Title         string
	StartDate     string
	PricePerAdult int64
	PricePerChild int64
	Capacity      int
	Inactive      bool
}

// InsertEvent adds an event and returns its id.
func InsertEvent(t *testing.T, db *sql.DB, e Event) uint64 {
	t.Helper()
	if e.Title == "" {
		e.Title = "Tour"
	}
	if e.Capacity == 0 {
		e.Capacity = 40
	}
	res, err := db.Exec(`INSERT INTO events
    (title, source, destination, start_date, end_date, price_per_adult, price_per_child, capacity, status, created_at, updated_at)
VALUES (?, 'Tehran', 'Shiraz', ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.StartDate, e.StartDate, e.PricePerAdult, e.PricePerChild, e.Capacity, !e.Inactive,
		fixtureTime, fixtureTime)
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return lastID(t, res)
}

// InsertReservation adds a reservation row directly.
func InsertReservation(t *testing.T, db *sql.DB, userID, eventID uint64, adults, children int, total int64, paid bool) uint64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO reservations
    (user_id, event_id, num_of_adults, num_of_children, num_of_beds, total_price, status, created_at, updated_at)
VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		userID, eventID, adults, children, total, paid, fixtureTime, fixtureTime)
	if err != nil {
		t.Fatalf("insert reservation: %v", err)
	}
	return lastID(t, res)
}

// Balance reads a wallet balance.
func Balance(t *testing.T, db *sql.DB, walletID uint64) int64 {
	t.Helper()
	var b int64
	if err := db.QueryRow(`SELECT balance FROM wallets WHERE id = ?`, walletID).Scan(&b); err != nil {
		t.Fatalf("read balance: %v", err)
	}
	return b
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func lastID(t *testing.T, res sql.Result) uint64 {
	t.Helper()
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return uint64(id)
}
