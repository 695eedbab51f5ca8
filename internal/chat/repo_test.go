package chat

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("turn-1", sql.NullString{}, "hi", "hello", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("turn-2", sql.NullString{String: "doc-1", Valid: true}, "hi", "hello", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), Turn{ID: "turn-1", Message: "hi", Response: "hello", CreatedAt: now}); err != nil {
		t.Fatalf("Create unlinked: %v", err)
	}
	if err := repo.Create(context.Background(), Turn{ID: "turn-2", DocumentID: "doc-1", Message: "hi", Response: "hello", CreatedAt: now}); err != nil {
		t.Fatalf("Create linked: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMongoRepoCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.Create(context.Background(), Turn{ID: "turn-1", Message: "hi", Response: "hello", CreatedAt: time.Now()}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewMongoRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		if err := repo.Create(context.Background(), Turn{ID: "turn-1", Message: "hi"}); err == nil {
			t.Fatalf("expected duplicate key error")
		}
	})
}
