package database

import (
	"context"
	"testing"
	"time"

	"iqdbtag/internal/database/sqlc"
	"iqdbtag/internal/tagger"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// newTestDB creates a new in-memory database with the schema migrated.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:", fixedClock{time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newImage(checksum, path string) tagger.NewImage {
	return tagger.NewImage{
		Path: path,
		Info: tagger.ImageInfo{Checksum: checksum, Width: 128, Height: 128, DHash: "d:0"},
	}
}

// mustGetOrCreateTag runs getOrCreateTag in its own transaction.
func mustGetOrCreateTag(t *testing.T, db *SQLiteDatabase, name tagger.TagName) (sqlc.Tag, bool) {
	t.Helper()
	ctx := context.Background()
	var (
		tag     sqlc.Tag
		created bool
	)
	err := db.withTx(ctx, func(q *sqlc.Queries) error {
		var err error
		tag, created, err = getOrCreateTag(ctx, q, name)
		return err
	})
	if err != nil {
		t.Fatalf("getOrCreateTag(%s) error = %v", name, err)
	}
	return tag, created
}

func mustImageID(t *testing.T, db *SQLiteDatabase, checksum string) int64 {
	t.Helper()
	img, _, err := db.GetOrCreateImage(newImage(checksum, "/img/"+checksum+".jpg"))
	if err != nil {
		t.Fatalf("GetOrCreateImage() error = %v", err)
	}
	return img.ID
}

func TestSQLiteDatabase_GetOrCreateImage(t *testing.T) {
	t.Run("creates then reuses by checksum", func(t *testing.T) {
		db := newTestDB(t)

		first, created, err := db.GetOrCreateImage(newImage("abc", "/a/red.jpg"))
		if err != nil {
			t.Fatalf("GetOrCreateImage() error = %v", err)
		}
		if !created {
			t.Error("first GetOrCreateImage() created = false, want true")
		}

		second, created, err := db.GetOrCreateImage(newImage("abc", "/b/copy.jpg"))
		if err != nil {
			t.Fatalf("second GetOrCreateImage() error = %v", err)
		}
		if created {
			t.Error("second GetOrCreateImage() created = true, want false")
		}
		if second.ID != first.ID {
			t.Errorf("ID = %d, want %d", second.ID, first.ID)
		}
		if second.Path != "/a/red.jpg" {
			t.Errorf("Path = %q, want original path %q", second.Path, "/a/red.jpg")
		}

		counts, err := db.Counts()
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if counts["images"] != 1 {
			t.Errorf("images = %d, want 1", counts["images"])
		}
	})

	t.Run("stores dimensions and dhash", func(t *testing.T) {
		db := newTestDB(t)

		img, _, err := db.GetOrCreateImage(newImage("abc", "/a/red.jpg"))
		if err != nil {
			t.Fatalf("GetOrCreateImage() error = %v", err)
		}
		if img.Width != 128 || img.Height != 128 {
			t.Errorf("size = %dx%d, want 128x128", img.Width, img.Height)
		}
		if !img.Dhash.Valid || img.Dhash.String != "d:0" {
			t.Errorf("Dhash = %v, want d:0", img.Dhash)
		}
		if !img.CreatedAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)) {
			t.Errorf("CreatedAt = %v, want clock time", img.CreatedAt)
		}
	})
}

func TestSQLiteDatabase_FindImageByChecksum(t *testing.T) {
	db := newTestDB(t)

	got, err := db.FindImageByChecksum("missing")
	if err != nil {
		t.Fatalf("FindImageByChecksum() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindImageByChecksum() = %v, want nil", got)
	}

	id := mustImageID(t, db, "abc")
	got, err = db.FindImageByChecksum("abc")
	if err != nil {
		t.Fatalf("FindImageByChecksum() error = %v", err)
	}
	if got == nil || got.ID != id {
		t.Errorf("FindImageByChecksum() = %v, want image %d", got, id)
	}
}

func TestSQLiteDatabase_GetOrCreateThumbnail(t *testing.T) {
	db := newTestDB(t)
	imageID := mustImageID(t, db, "abc")
	size := tagger.Size{Width: 150, Height: 150}

	thumb, created, err := db.GetOrCreateThumbnail(imageID, size, "/thumbs/abc-150-150.jpg")
	if err != nil {
		t.Fatalf("GetOrCreateThumbnail() error = %v", err)
	}
	if !created {
		t.Error("first GetOrCreateThumbnail() created = false, want true")
	}

	again, created, err := db.GetOrCreateThumbnail(imageID, size, "/other/path.jpg")
	if err != nil {
		t.Fatalf("second GetOrCreateThumbnail() error = %v", err)
	}
	if created {
		t.Error("second GetOrCreateThumbnail() created = true, want false")
	}
	if again.ID != thumb.ID || again.Path != "/thumbs/abc-150-150.jpg" {
		t.Errorf("second thumbnail = %+v, want %+v", again, thumb)
	}

	found, err := db.FindThumbnail(imageID, size)
	if err != nil {
		t.Fatalf("FindThumbnail() error = %v", err)
	}
	if found == nil || found.ID != thumb.ID {
		t.Errorf("FindThumbnail() = %v, want %d", found, thumb.ID)
	}

	missing, err := db.FindThumbnail(imageID, tagger.Size{Width: 300, Height: 300})
	if err != nil {
		t.Fatalf("FindThumbnail() error = %v", err)
	}
	if missing != nil {
		t.Errorf("FindThumbnail() for other size = %v, want nil", missing)
	}

	all, err := db.ListThumbnails(imageID)
	if err != nil {
		t.Fatalf("ListThumbnails() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(ListThumbnails()) = %d, want 1", len(all))
	}
}

func TestSQLiteDatabase_SaveImageMatch(t *testing.T) {
	item := tagger.MatchItem{
		Href:       "//danbooru.donmai.us/posts/1",
		Thumb:      "/danbooru/1.jpg",
		Rating:     tagger.RatingSafe,
		Width:      800,
		Height:     600,
		ImgAlt:     "Rating: s Score: 5",
		Similarity: 95,
		Status:     tagger.StatusBestMatch,
	}

	t.Run("creates match result and image match", func(t *testing.T) {
		db := newTestDB(t)
		imageID := mustImageID(t, db, "abc")

		m, created, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, item)
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
		if !created {
			t.Error("SaveImageMatch() created = false, want true")
		}
		if m.MatchResult.Href != item.Href {
			t.Errorf("Href = %q, want %q", m.MatchResult.Href, item.Href)
		}
		if m.ImageMatch.Similarity != 95 || m.Status() != tagger.StatusBestMatch {
			t.Errorf("image match = %+v, want similarity 95 best match", m.ImageMatch)
		}
		if m.Size() != "800x600" {
			t.Errorf("Size() = %q, want 800x600", m.Size())
		}
	})

	t.Run("second save is a no-op and keeps first values", func(t *testing.T) {
		db := newTestDB(t)
		imageID := mustImageID(t, db, "abc")

		first, _, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, item)
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}

		changed := item
		changed.Similarity = 50
		second, created, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, changed)
		if err != nil {
			t.Fatalf("second SaveImageMatch() error = %v", err)
		}
		if created {
			t.Error("second SaveImageMatch() created = true, want false")
		}
		if second.ImageMatch.ID != first.ImageMatch.ID || second.ImageMatch.Similarity != 95 {
			t.Errorf("second match = %+v, want unchanged %+v", second.ImageMatch, first.ImageMatch)
		}
	})

	t.Run("match result is shared across images and places", func(t *testing.T) {
		db := newTestDB(t)
		imageA := mustImageID(t, db, "aaa")
		imageB := mustImageID(t, db, "bbb")

		a, _, err := db.SaveImageMatch(imageA, tagger.PlaceIQDB, item)
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
		b, created, err := db.SaveImageMatch(imageB, tagger.PlaceDanbooru, item)
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
		if !created {
			t.Error("match for second image created = false, want true")
		}
		if a.MatchResult.ID != b.MatchResult.ID {
			t.Errorf("match result IDs differ: %d vs %d", a.MatchResult.ID, b.MatchResult.ID)
		}

		counts, err := db.Counts()
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if counts["match_results"] != 1 || counts["image_matches"] != 2 {
			t.Errorf("counts = %v, want 1 match result and 2 image matches", counts)
		}
	})

	t.Run("find filters by place", func(t *testing.T) {
		db := newTestDB(t)
		imageID := mustImageID(t, db, "abc")

		if _, _, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, item); err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}

		iqdb, err := db.FindImageMatches(imageID, tagger.PlaceIQDB)
		if err != nil {
			t.Fatalf("FindImageMatches() error = %v", err)
		}
		if len(iqdb) != 1 {
			t.Errorf("iqdb matches = %d, want 1", len(iqdb))
		}

		danbooru, err := db.FindImageMatches(imageID, tagger.PlaceDanbooru)
		if err != nil {
			t.Fatalf("FindImageMatches() error = %v", err)
		}
		if len(danbooru) != 0 {
			t.Errorf("danbooru matches = %d, want 0", len(danbooru))
		}

		all, err := db.ListImageMatches(imageID)
		if err != nil {
			t.Fatalf("ListImageMatches() error = %v", err)
		}
		if len(all) != 1 {
			t.Errorf("all matches = %d, want 1", len(all))
		}
	})
}

func TestSQLiteDatabase_ReplaceImageMatches(t *testing.T) {
	old := tagger.MatchItem{Href: "//danbooru.donmai.us/posts/1", Similarity: 95, Status: tagger.StatusBestMatch}
	kept := tagger.MatchItem{Href: "http://www.zerochan.net/2", Similarity: 80, Status: tagger.StatusPossibleMatch}

	db := newTestDB(t)
	imageID := mustImageID(t, db, "abc")
	for _, item := range []tagger.MatchItem{old, kept} {
		if _, _, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, item); err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
	}
	if _, _, err := db.SaveImageMatch(imageID, tagger.PlaceDanbooru, old); err != nil {
		t.Fatalf("SaveImageMatch(danbooru) error = %v", err)
	}

	kept.Similarity = 60
	if err := db.ReplaceImageMatches(imageID, tagger.PlaceIQDB, []tagger.MatchItem{kept}); err != nil {
		t.Fatalf("ReplaceImageMatches() error = %v", err)
	}

	iqdb, err := db.FindImageMatches(imageID, tagger.PlaceIQDB)
	if err != nil {
		t.Fatalf("FindImageMatches() error = %v", err)
	}
	if len(iqdb) != 1 || iqdb[0].MatchResult.Href != kept.Href || iqdb[0].ImageMatch.Similarity != 60 {
		t.Errorf("iqdb matches = %+v, want only %s at 60", iqdb, kept.Href)
	}

	danbooru, err := db.FindImageMatches(imageID, tagger.PlaceDanbooru)
	if err != nil {
		t.Fatalf("FindImageMatches(danbooru) error = %v", err)
	}
	if len(danbooru) != 1 {
		t.Errorf("danbooru matches = %d, want 1 (other places untouched)", len(danbooru))
	}

	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts["match_results"] != 2 {
		t.Errorf("match_results = %d, want 2", counts["match_results"])
	}
}

func TestSQLiteDatabase_Tags(t *testing.T) {
	setup := func(t *testing.T) (*SQLiteDatabase, int64) {
		t.Helper()
		db := newTestDB(t)
		imageID := mustImageID(t, db, "abc")
		m, _, err := db.SaveImageMatch(imageID, tagger.PlaceIQDB, tagger.MatchItem{Href: "//example.com/1"})
		if err != nil {
			t.Fatalf("SaveImageMatch() error = %v", err)
		}
		return db, m.MatchResult.ID
	}

	t.Run("get or create tag", func(t *testing.T) {
		db, _ := setup(t)
		name := tagger.TagName{Namespace: "character", Name: "hatsune_miku"}

		first, created := mustGetOrCreateTag(t, db, name)
		if !created {
			t.Error("first getOrCreateTag() created = false, want true")
		}

		second, created := mustGetOrCreateTag(t, db, name)
		if created || second.ID != first.ID {
			t.Errorf("second getOrCreateTag() = (%d, %v), want (%d, false)", second.ID, created, first.ID)
		}

		general, created := mustGetOrCreateTag(t, db, tagger.TagName{Name: "hatsune_miku"})
		if !created || general.ID == first.ID {
			t.Error("same name in another namespace should be a distinct tag")
		}
	})

	t.Run("associating twice leaves one row per tag", func(t *testing.T) {
		db, matchResultID := setup(t)
		names := []tagger.TagName{{Name: "1girl"}, {Name: "smile"}}

		if _, err := db.AssociateTags(matchResultID, names); err != nil {
			t.Fatalf("AssociateTags() error = %v", err)
		}
		if _, err := db.AssociateTags(matchResultID, names); err != nil {
			t.Fatalf("second AssociateTags() error = %v", err)
		}

		counts, err := db.Counts()
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if counts["match_tags"] != 2 {
			t.Errorf("match_tags = %d, want 2", counts["match_tags"])
		}
	})

	t.Run("associate tags in one transaction", func(t *testing.T) {
		db, matchResultID := setup(t)
		names := []tagger.TagName{
			{Name: "1girl"},
			{Namespace: "character", Name: "hatsune_miku"},
			{Name: "1girl"},
		}

		tags, err := db.AssociateTags(matchResultID, names)
		if err != nil {
			t.Fatalf("AssociateTags() error = %v", err)
		}
		if len(tags) != 2 {
			t.Fatalf("len(AssociateTags()) = %d, want 2", len(tags))
		}

		again, err := db.AssociateTags(matchResultID, names)
		if err != nil {
			t.Fatalf("second AssociateTags() error = %v", err)
		}
		if len(again) != 2 {
			t.Errorf("len(second AssociateTags()) = %d, want 2", len(again))
		}

		found, err := db.FindTagsForMatch(matchResultID)
		if err != nil {
			t.Fatalf("FindTagsForMatch() error = %v", err)
		}
		if len(found) != 2 {
			t.Errorf("len(FindTagsForMatch()) = %d, want 2", len(found))
		}
	})

	t.Run("failed association rolls back new tags", func(t *testing.T) {
		db, _ := setup(t)

		// No match result 999 exists, so the foreign key rejects the link.
		_, err := db.AssociateTags(999, []tagger.TagName{{Name: "orphan"}})
		if err == nil {
			t.Fatal("AssociateTags() expected foreign key error")
		}

		tag, created := mustGetOrCreateTag(t, db, tagger.TagName{Name: "orphan"})
		if !created {
			t.Errorf("tag %d survived a rolled back transaction", tag.ID)
		}
	})
}

func TestSQLiteDatabase_Operations(t *testing.T) {
	db := newTestDB(t)

	op, err := db.CreateOperation("search", "path=/a.jpg")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if op.Status != "running" {
		t.Errorf("Status = %q, want running", op.Status)
	}

	if err := db.FinishOperation(op.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}
	if _, err := db.CreateOperation("show", "path=/b.jpg"); err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	ops, err := db.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("len(ListOperations()) = %d, want 2", len(ops))
	}
	if ops[0].Operation != "show" {
		t.Errorf("newest operation = %q, want show", ops[0].Operation)
	}
	if ops[1].Status != "success" || !ops[1].FinishedAt.Valid {
		t.Errorf("finished operation = %+v, want success with finish time", ops[1])
	}

	limited, err := db.ListOperations(1)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("len(ListOperations(1)) = %d, want 1", len(limited))
	}
}
