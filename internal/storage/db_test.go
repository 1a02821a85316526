package storage

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/mptetris/tetris-server/assets"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateFreshDatabase(t *testing.T) {
	db := openMemory(t)
	if err := Migrate(db, assets.Migrations(), map[string]string{"LEGACY_MODE": "MP"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO ranks (nickname, mode, score) VALUES ('Ada', 'Normal', 10), ('Ada', 'MP', 20)`); err != nil {
		t.Fatalf("same nickname in two modes should be allowed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO settings (key, value) VALUES ('clear_threshold', '55')`); err != nil {
		t.Fatalf("settings table missing: %v", err)
	}
}

func TestMigrateUpgradesLegacyRanks(t *testing.T) {
	db := openMemory(t)
	if _, err := db.Exec(`
        CREATE TABLE ranks (nickname TEXT PRIMARY KEY, score INTEGER NOT NULL DEFAULT 0);
        INSERT INTO ranks (nickname, score) VALUES ('Ada', 120), ('Bob', 80);`); err != nil {
		t.Fatalf("seed legacy table: %v", err)
	}

	vars := map[string]string{"LEGACY_MODE": "MP"}
	if err := Migrate(db, assets.Migrations(), vars); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rows, err := db.Query(`SELECT nickname, mode, score FROM ranks ORDER BY score DESC`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	type row struct {
		nick, mode string
		score      int
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.nick, &r.mode, &r.score); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, r)
	}
	want := []row{{"Ada", "MP", 120}, {"Bob", "MP", 80}}
	if len(got) != len(want) {
		t.Fatalf("rows = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// a second run is a no-op
	if err := Migrate(db, assets.Migrations(), vars); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ranks`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("count = %d, err = %v", n, err)
	}
}

func TestMigrateQuotesVariables(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"001_t.sql": {Data: []byte(`CREATE TABLE t (v TEXT); INSERT INTO t (v) VALUES (${NAME});`)},
	}
	if err := Migrate(db, fsys, map[string]string{"NAME": "it's"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	var v string
	if err := db.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "it's" {
		t.Fatalf("v = %q", v)
	}
}
