package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := OpenHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func historyIDs(entries []HistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.SessionID)
	}
	return out
}

func TestHistoryNewestFirst(t *testing.T) {
	store := openTestHistory(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"spotify", "vlc", "mpv"} {
		entry := HistoryEntry{SessionID: id, Label: id, SelectedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, store.Add(entry, 0))
	}

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Equal(t, []string{"mpv", "vlc", "spotify"}, historyIDs(entries))
	require.True(t, entries[0].SelectedAt.Equal(base.Add(2*time.Second)))

	entries, err = store.Recent(2)
	require.NoError(t, err)
	require.Equal(t, []string{"mpv", "vlc"}, historyIDs(entries))
}

// Sub-second differences must still sort by time
func TestHistoryOrdersWithinSecond(t *testing.T) {
	store := openTestHistory(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(HistoryEntry{SessionID: "a", SelectedAt: base.Add(900 * time.Millisecond)}, 0))
	require.NoError(t, store.Add(HistoryEntry{SessionID: "b", SelectedAt: base.Add(1000 * time.Millisecond)}, 0))
	require.NoError(t, store.Add(HistoryEntry{SessionID: "c", SelectedAt: base.Add(1001 * time.Millisecond)}, 0))

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, historyIDs(entries))
}

func TestHistoryDedupesSession(t *testing.T) {
	store := openTestHistory(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(HistoryEntry{SessionID: "spotify", Label: "old", SelectedAt: base}, 0))
	require.NoError(t, store.Add(HistoryEntry{SessionID: "vlc", SelectedAt: base.Add(time.Second)}, 0))
	require.NoError(t, store.Add(HistoryEntry{SessionID: "spotify", Label: "new", SelectedAt: base.Add(2 * time.Second)}, 0))

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Equal(t, []string{"spotify", "vlc"}, historyIDs(entries))
	require.Equal(t, "new", entries[0].Label)
}

func TestHistoryTrimsToLimit(t *testing.T) {
	store := openTestHistory(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.Add(HistoryEntry{SessionID: id, SelectedAt: base.Add(time.Duration(i) * time.Minute)}, 3))
	}

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Equal(t, []string{"e", "d", "c"}, historyIDs(entries))
}

func TestHistorySessionIDWithColons(t *testing.T) {
	store := openTestHistory(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := "kdeconnect.mpris_phone:1:2"

	require.NoError(t, store.Add(HistoryEntry{SessionID: id, SelectedAt: base}, 0))
	require.NoError(t, store.Add(HistoryEntry{SessionID: id, SelectedAt: base.Add(time.Second)}, 0))

	entries, err := store.Recent(0)
	require.NoError(t, err)
	require.Equal(t, []string{id}, historyIDs(entries))
	require.Equal(t, []byte(id), keySessionID(historyKey(base, id)))
}

func TestHistoryDefaultsSelectedAt(t *testing.T) {
	store := openTestHistory(t)
	before := time.Now()

	require.NoError(t, store.Add(HistoryEntry{SessionID: "spotify"}, 10))

	entries, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].SelectedAt.Before(before.Add(-time.Second)))
}

func TestRenderHistory(t *testing.T) {
	var b strings.Builder
	renderHistory(&b, []HistoryEntry{
		{SessionID: "spotify", Label: "󰐊 spotify: Song", SelectedAt: time.Now()},
	})
	out := b.String()
	require.Contains(t, out, "PLAYER")
	require.Contains(t, out, "spotify")
	require.Contains(t, out, "Song")
}
