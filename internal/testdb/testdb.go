// Package testdb builds file-backed SQLite stores filled with fake trade rows.
// It is imported by tests only.
package testdb

import (
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"trade-sync/internal/entity"

	"github.com/brianvoe/gofakeit/v6"
	_ "modernc.org/sqlite"
)

// Side selects which half of an entity mapping a table is built from.
type Side int

const (
	Source Side = iota
	Target
)

// Driver is the database/sql driver name of the fixtures.
const Driver = "sqlite"

// Open creates an empty database file under t.TempDir and returns its DSN
// with a handle that is closed at cleanup.
func Open(t testing.TB, name string) (string, *sql.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), name+".db")
	db, err := sql.Open(Driver, dsn)
	if err != nil {
		t.Fatalf("open %s: %v", dsn, err)
	}
	t.Cleanup(func() { db.Close() })
	return dsn, db
}

// CreateTable creates the spec's table for side with the key as INTEGER PRIMARY KEY.
func CreateTable(t testing.TB, db *sql.DB, spec entity.Spec, side Side) {
	t.Helper()

	table, key, cols := names(spec, side)
	defs := make([]string, len(cols))
	for i, c := range cols {
		if c == key {
			defs[i] = c + " INTEGER PRIMARY KEY"
		} else {
			defs[i] = c
		}
	}
	exec(t, db, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", ")))
}

// Insert writes one fake row per id. Rows are seeded by id, so the same id
// always produces the same values on either side.
func Insert(t testing.TB, db *sql.DB, spec entity.Spec, side Side, ids ...int64) {
	t.Helper()

	table, _, cols := names(spec, side)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)
	for _, id := range ids {
		exec(t, db, query, FakeRow(spec, id)...)
	}
}

// Delete removes rows by id.
func Delete(t testing.TB, db *sql.DB, spec entity.Spec, side Side, ids ...int64) {
	t.Helper()

	table, key, _ := names(spec, side)
	for _, id := range ids {
		exec(t, db, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, key), id)
	}
}

// IDs returns the keys present in the spec's table for side, ascending.
func IDs(t testing.TB, db *sql.DB, spec entity.Spec, side Side) []int64 {
	t.Helper()

	table, key, _ := names(spec, side)
	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s", key, table))
	if err != nil {
		t.Fatalf("select ids: %v", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan id: %v", err)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the row count of the spec's table for side.
func Count(t testing.TB, db *sql.DB, spec entity.Spec, side Side) int {
	t.Helper()

	table, _, _ := names(spec, side)
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// Seq returns the ids from..to inclusive.
func Seq(from, to int64) []int64 {
	var ids []int64
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}

// FakeRow generates a row for spec in field order, guessing a plausible value
// from each column name.
func FakeRow(spec entity.Spec, id int64) []any {
	f := gofakeit.New(id + 1) // seed 0 means random
	row := make([]any, len(spec.Fields))
	for i, field := range spec.Fields {
		if field.Source == spec.SourceKey {
			row[i] = id
			continue
		}
		row[i] = fakeValue(f, field.Source)
	}
	return row
}

func fakeValue(f *gofakeit.Faker, column string) any {
	n := strings.ToLower(column)
	switch {
	case strings.HasSuffix(n, "id"):
		return int64(f.Number(1, 9999))
	case strings.Contains(n, "date"), strings.Contains(n, "timestamp"):
		return f.DateRange(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).
			UTC().Format("2006-01-02 15:04:05")
	case strings.Contains(n, "currency"):
		return f.CurrencyShort()
	case n == "active" || n == "ndf" || strings.HasPrefix(n, "is"):
		return f.Bool()
	case n == "position":
		return f.RandomString([]string{"BUY", "SELL"})
	case n == "optionstyle":
		return f.RandomString([]string{"EUROPEAN", "AMERICAN"})
	case n == "optiontype":
		return f.RandomString([]string{"CALL", "PUT"})
	case n == "transactiontype":
		return f.RandomString([]string{"DEPOSIT", "WITHDRAWAL", "FEE"})
	case strings.Contains(n, "quantity"), strings.Contains(n, "amount"):
		return math.Round(f.Float64Range(1_000, 10_000_000))
	case n == "price", n == "strike", n == "premium":
		return math.Round(f.Float64Range(0.5, 2)*10_000) / 10_000
	case strings.Contains(n, "code"):
		return strings.ToUpper(f.LetterN(4))
	case n == "trader", n == "validator", n == "moduser":
		return f.Username()
	case n == "location", n == "cut":
		return f.City()
	default:
		return f.Sentence(4)
	}
}

func names(spec entity.Spec, side Side) (table, key string, cols []string) {
	if side == Source {
		return spec.SourceTable, spec.SourceKey, spec.SourceColumns()
	}
	return spec.TargetTable, spec.TargetKey, spec.TargetColumns()
}

func exec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// Stores is a pair of source and target databases with one entity's tables created.
type Stores struct {
	SourceDSN string
	TargetDSN string
	Source    *sql.DB
	Target    *sql.DB
}

// NewStores creates source and target databases holding empty tables for spec.
func NewStores(t testing.TB, spec entity.Spec) *Stores {
	t.Helper()

	st := &Stores{}
	st.SourceDSN, st.Source = Open(t, "source")
	st.TargetDSN, st.Target = Open(t, "target")
	CreateTable(t, st.Source, spec, Source)
	CreateTable(t, st.Target, spec, Target)
	return st
}
