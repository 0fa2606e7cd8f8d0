package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stockwatch/pkg/logx"
)

func TestOpenDrivers(t *testing.T) {
	t.Parallel()
	j, err := Open(Config{}, logx.Nop())
	if err != nil {
		t.Fatalf("empty driver: %v", err)
	}
	if Enabled(j) {
		t.Fatal("empty driver should be a no-op journal")
	}
	if err := j.Append(context.Background(), Entry{TargetID: "t"}); err != nil {
		t.Fatalf("nop Append: %v", err)
	}

	if _, err := Open(Config{Driver: "bolt"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(Config{Driver: "sqlite"}, logx.Nop()); err == nil {
		t.Fatal("sqlite driver without path should fail")
	}
}

func TestSQLiteAppend(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")
	j, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() {
		_ = j.Close()
	}()
	if !Enabled(j) {
		t.Fatal("sqlite journal should be enabled")
	}

	ctx := context.Background()
	entries := []Entry{
		{TargetID: "gpu", State: "out_of_stock", Marker: "rupture de stock", Duration: 120 * time.Millisecond},
		{TargetID: "gpu", State: "unknown", Error: "timeout", Duration: 30 * time.Second},
		{TargetID: "ps5", State: "in_stock"},
	}
	for _, e := range entries {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append(%+v): %v", e, err)
		}
	}

	sj, ok := j.(*sqliteJournal)
	if !ok {
		t.Fatalf("unexpected journal type %T", j)
	}
	var n int
	if err := sj.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM checks").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != len(entries) {
		t.Fatalf("recorded %d rows, want %d", n, len(entries))
	}

	var marker any
	if err := sj.db.QueryRowContext(ctx,
		"SELECT marker FROM checks WHERE target_id = 'ps5'").Scan(&marker); err != nil {
		t.Fatal(err)
	}
	if marker != nil {
		t.Fatalf("empty marker should be NULL, got %v", marker)
	}
}
