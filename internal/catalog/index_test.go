package catalog

import (
	"context"
	"testing"
)

func TestCacheSnapshotAndInvalidate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertSong(ctx, Song{SongID: "song-a", Title: "Song", OriginalArtist: "Artist"}); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(store)
	first, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.Len() != 1 {
		t.Fatalf("expected 1 song in snapshot, got %d", first.Len())
	}

	// A write after the snapshot is not visible until Invalidate.
	if err := store.UpsertSong(ctx, Song{SongID: "song-b", Title: "Other", OriginalArtist: "Artist"}); err != nil {
		t.Fatal(err)
	}
	cached, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cached != first {
		t.Fatal("expected cached snapshot to be reused")
	}
	if cached.Len() != 1 {
		t.Fatalf("cached snapshot changed size: %d", cached.Len())
	}

	cache.Invalidate()
	reloaded, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected reloaded snapshot with 2 songs, got %d", reloaded.Len())
	}
}

func TestIndexNilSafe(t *testing.T) {
	var idx *Index
	if idx.Songs() != nil {
		t.Fatal("expected nil songs from nil index")
	}
	if idx.Len() != 0 {
		t.Fatal("expected zero length from nil index")
	}
}
