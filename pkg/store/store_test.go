package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/projectdiscovery/edgeping/pkg/report"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "edgeping.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	started := time.Now().Add(-time.Minute).UTC()
	info := SessionInfo{
		ID:         "session-1",
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Platform:   "linux",
		Candidates: 512,
		Probed:     512,
	}
	entries := []report.Entry{
		{Rank: 1, Addr: "1.1.1.1", RTT: 12 * time.Millisecond, City: "Los Angeles", Country: "US"},
		{Rank: 2, Addr: "1.0.0.1", RTT: 48 * time.Millisecond},
	}

	if err := db.SaveSession(info, entries); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	got, err := db.SessionResults("session-1")
	if err != nil {
		t.Fatalf("SessionResults() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SessionResults() count = %d, want 2", len(got))
	}
	if got[0].Rank != 1 || got[0].Addr != "1.1.1.1" || got[0].RTT != 12*time.Millisecond {
		t.Errorf("first entry = %+v, want rank 1 1.1.1.1 12ms", got[0])
	}
	if got[0].City != "Los Angeles" || got[0].Country != "US" {
		t.Errorf("first entry location = %q/%q, want Los Angeles/US", got[0].City, got[0].Country)
	}
	if got[1].Addr != "1.0.0.1" || got[1].City != "" {
		t.Errorf("second entry = %+v, want 1.0.0.1 with no location", got[1])
	}
}

func TestSaveSessionDuplicateID(t *testing.T) {
	db := openTestDB(t)

	info := SessionInfo{ID: "session-1", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := db.SaveSession(info, nil); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := db.SaveSession(info, nil); err == nil {
		t.Error("SaveSession() error = nil for a duplicate session id")
	}
}

func TestSessionResultsUnknownSession(t *testing.T) {
	db := openTestDB(t)

	got, err := db.SessionResults("missing")
	if err != nil {
		t.Fatalf("SessionResults() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("SessionResults() count = %d, want 0", len(got))
	}
}
