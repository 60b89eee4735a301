package state

import (
	"testing"
	"time"
)

func TestStoreNotifyRecordsNotice(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	store.Notify(NoticeError, "boom")

	notice := store.Snapshot().Notice
	if notice.Level != NoticeError || notice.Text != "boom" {
		t.Fatalf("unexpected notice %+v", notice)
	}
	if !notice.At.Equal(fixed) {
		t.Fatalf("expected notice time %s, got %s", fixed, notice.At)
	}
}

func TestStoreActiveView(t *testing.T) {
	store := NewStore()
	if store.ActiveView() != ViewConfiguration {
		t.Fatalf("expected configuration view by default, got %q", store.ActiveView())
	}
	store.SetActiveView(ViewAssistant)
	if got := store.Snapshot().ActiveView; got != ViewAssistant {
		t.Fatalf("expected assistant view, got %q", got)
	}
}

func TestStoreSubscriptionReceivesNotifications(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		if _, ok := <-sub.Events(); ok {
			close(done)
		}
	}()

	store.Changed()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for store notification")
	}
}

func TestStoreSubscriptionCloseStopsEvents(t *testing.T) {
	store := NewStore()
	sub := store.Subscribe()
	sub.Close()

	if _, ok := <-sub.Events(); ok {
		t.Fatal("expected events channel to be closed after Close")
	}

	store.Notify(NoticeInfo, "after close")
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("did not expect events after subscription closed")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	store.Notify(NoticeInfo, "ignored")
	store.Changed()
}

func TestLogAppendKeepsOrderAndCopies(t *testing.T) {
	log := NewLog()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	log.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	log.Append(SeverityInfo, "first")
	log.Append(SeverityError, "second")
	log.Append(SeverityInfo, "first")

	entries := log.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (no dedupe), got %d", len(entries))
	}
	if entries[0].Message != "first" || entries[1].Message != "second" || entries[2].Message != "first" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if !entries[1].Timestamp.After(entries[0].Timestamp) {
		t.Fatalf("expected capture timestamps to increase")
	}

	entries[0].Message = "mutated"
	if log.Entries()[0].Message != "first" {
		t.Fatal("expected entries copy to be isolated")
	}
}

func TestCategoryStateReady(t *testing.T) {
	cases := []struct {
		name  string
		state CategoryState
		want  bool
	}{
		{"empty", CategoryState{}, false},
		{"selected", CategoryState{Selected: "config/hosts.yaml"}, true},
		{"pending upload", CategoryState{PendingUpload: "hosts.yaml"}, true},
		{"files only", CategoryState{Files: []ExistingFile{{Name: "hosts.yaml"}}}, false},
	}
	for _, tc := range cases {
		if got := tc.state.Ready(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
