package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

// withJournal points the journal at a temp home and restores globals afterwards.
func withJournal(t *testing.T, enabled bool) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	originalLoggingEnabled := loggingEnabled
	t.Cleanup(func() {
		loggingEnabled = originalLoggingEnabled
		currentSession = nil
	})
	loggingEnabled = enabled
	return home
}

func TestLogSession(t *testing.T) {
	withJournal(t, true)

	if err := StartSession("rename", []string{"a.mkv", "--movie"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession == nil {
		t.Fatal("StartSession() should have created a session")
	}

	want := []string{"rename", "a.mkv", "--movie"}
	if diff := cmp.Diff(want, currentSession.Metadata.CommandArgs); diff != "" {
		t.Errorf("CommandArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestLogOperations(t *testing.T) {
	withJournal(t, true)

	if err := StartSession("rename", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}

	LogRename("old.mkv", "new.mkv", true, nil)
	LogTag("new.mkv", "old title", "Pilot", true, nil)
	LogRename("error.mkv", "failed.mkv", false, os.ErrPermission)

	ops := currentSession.Operations
	if len(ops) != 3 {
		t.Fatalf("Expected 3 operations, got %d", len(ops))
	}

	expectedTypes := []OperationType{OpRename, OpTag, OpRename}
	for i, op := range ops {
		if op.Type != expectedTypes[i] {
			t.Errorf("Operation %d: expected type %s, got %s", i, expectedTypes[i], op.Type)
		}
	}
	if ops[1].PrevTitle != "old title" || ops[1].NewTitle != "Pilot" || ops[1].SourcePath != "new.mkv" {
		t.Errorf("tag op = %+v", ops[1])
	}

	updateStats()
	if currentSession.Metadata.SuccessfulOps != 2 || currentSession.Metadata.FailedOps != 1 {
		t.Errorf("stats = %+v", currentSession.Metadata)
	}
	if ops[2].Success || ops[2].Error == "" {
		t.Errorf("failed op = %+v", ops[2])
	}
}

func TestEndSessionWritesJournal(t *testing.T) {
	home := withJournal(t, true)

	if err := StartSession("rename", nil); err != nil {
		t.Fatal(err)
	}
	LogRename("a.mkv", "b.mkv", true, nil)
	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("EndSession() should clear the current session")
	}

	files, _ := filepath.Glob(filepath.Join(home, ".title-match", "logs", "*.json"))
	if len(files) != 1 {
		t.Fatalf("journal files = %v, want 1", files)
	}
	sessions, err := ReadSessions(0)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ReadSessions() = %v, %v", sessions, err)
	}
	if sessions[0].Metadata.TotalOps != 1 {
		t.Errorf("TotalOps = %d", sessions[0].Metadata.TotalOps)
	}
}

func TestEndSessionSkipsEmptySessions(t *testing.T) {
	home := withJournal(t, true)

	if err := StartSession("search", []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".title-match", "logs")); !os.IsNotExist(err) {
		t.Errorf("empty session should not create the journal directory, stat err = %v", err)
	}
}

func TestSessionSerialization(t *testing.T) {
	tempDir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	session := &LogSession{
		Metadata: SessionMetadata{
			CommandArgs:   []string{"rename", "a.mkv"},
			WorkingDir:    tempDir,
			Timestamp:     now,
			SessionID:     "test_session_123",
			TotalOps:      2,
			SuccessfulOps: 1,
			FailedOps:     1,
		},
		Operations: []OperationLog{
			{ID: "test_session_123_0", Timestamp: now, Type: OpRename, SourcePath: "a.mkv", DestPath: "Show (2020) S01E01.mkv", Success: true},
			{ID: "test_session_123_1", Timestamp: now, Type: OpTag, SourcePath: "Show (2020) S01E01.mkv", NewTitle: "Pilot", Error: "boom"},
		},
	}

	path := filepath.Join(tempDir, "session.json")
	if err := writeSessionFile(session, path); err != nil {
		t.Fatalf("writeSessionFile() failed: %v", err)
	}
	got, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if diff := cmp.Diff(session, got); diff != "" {
		t.Errorf("Session mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggingDisabled(t *testing.T) {
	withJournal(t, false)

	if err := StartSession("rename", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if currentSession != nil {
		t.Error("Session should not be created when logging is disabled")
	}
	LogRename("old.mkv", "new.mkv", true, nil)
	if currentSession != nil {
		t.Error("Operations should not create session when logging disabled")
	}
	if err := EndSession(); err != nil {
		t.Errorf("EndSession() with logging disabled error = %v, want nil", err)
	}
}

func TestInitializeRemovesExpiredJournals(t *testing.T) {
	home := withJournal(t, true)
	dir := filepath.Join(home, ".title-match", "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	oldFile := filepath.Join(dir, "2020-01-01_000000.000.json")
	newFile := filepath.Join(dir, "2099-01-01_000000.000.json")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte(`{}`), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	Initialize(true, 30, zerolog.Nop())

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("expired journal should be removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("recent journal should remain: %v", err)
	}

	Initialize(false, 30, zerolog.Nop())
	if loggingEnabled {
		t.Error("Logging should be disabled after Initialize(false, ...)")
	}
}
