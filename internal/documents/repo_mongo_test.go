package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Create(context.Background(), Document{
			ID:            "doc-1",
			FileName:      "a.pdf",
			ContentType:   "application/pdf",
			ExtractedText: "hello",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "doc-1"},
			{Key: "filename", Value: "scan.png"},
			{Key: "content_type", Value: "image/png"},
			{Key: "file_size", Value: int64(12)},
			{Key: "extracted_text", Value: "some text"},
			{Key: "summary_text", Value: nil},
			{Key: "mindmap_schema", Value: "root -> leaf"},
			{Key: "schema_type", Value: "cascata"},
			{Key: "created_at", Value: "2025-02-01T09:30:00.123456+00:00"},
			{Key: "updated_at", Value: "2025-02-01T10:00:00+00:00"},
		}))

		doc, err := repo.GetByID(context.Background(), "doc-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if doc.FileName != "scan.png" || doc.SchemaText != "root -> leaf" || doc.HasSummary() {
			t.Fatalf("unexpected doc: %+v", doc)
		}
		want := time.Date(2025, 2, 1, 9, 30, 0, 123456000, time.UTC)
		if !doc.CreatedAt.Equal(want) {
			t.Fatalf("unexpected created_at %s", doc.CreatedAt)
		}
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{{Key: "id", Value: "b"}, {Key: "filename", Value: "b.pdf"}, {Key: "created_at", Value: "2025-02-02T00:00:00Z"}},
			bson.D{{Key: "id", Value: "a"}, {Key: "filename", Value: "a.pdf"}, {Key: "created_at", Value: "2025-02-01T00:00:00Z"}},
		)
		killCursors := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, killCursors)

		docs, err := repo.List(context.Background(), 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(docs) != 2 || docs[0].ID != "b" {
			t.Fatalf("unexpected docs: %+v", docs)
		}
	})

	mt.Run("update summary", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.UpdateSummary(context.Background(), "doc-1", "sum", "brief", time.Now()); err != nil {
			t.Fatalf("UpdateSummary: %v", err)
		}
	})

	mt.Run("update schema missing", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.UpdateSchema(context.Background(), "missing", "s", "cascade", time.Now())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("delete twice", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		if err := repo.Delete(context.Background(), "doc-1"); err != nil {
			t.Fatalf("first Delete: %v", err)
		}
		if err := repo.Delete(context.Background(), "doc-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestParseTimeToleratesGarbage(t *testing.T) {
	if !parseTime("yesterday").IsZero() {
		t.Fatal("expected zero time for unparsable input")
	}
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	if !parseTime(formatTime(ts)).Equal(ts) {
		t.Fatal("expected round trip")
	}
}

func TestFormatTimeSortsChronologically(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base,
		base.Add(100 * time.Millisecond),
		base.Add(100*time.Millisecond + time.Microsecond),
		base.Add(time.Second),
	}
	for i := 1; i < len(stamps); i++ {
		older, newer := formatTime(stamps[i-1]), formatTime(stamps[i])
		if !(older < newer) {
			t.Fatalf("expected %q < %q", older, newer)
		}
		if len(older) != len(newer) {
			t.Fatalf("expected fixed width, got %q and %q", older, newer)
		}
	}
	if got := formatTime(base); got != "2026-01-01T00:00:00.000000000Z" {
		t.Fatalf("unexpected layout %q", got)
	}
}
