package documents

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repo on a Mongo collection keyed by the "id" field.
// Timestamps are stored as ISO-8601 strings.
type MongoRepo struct {
	Coll *mongo.Collection
}

// NewMongoRepo returns a repo over the given collection.
func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{Coll: coll}
}

type mongoDocument struct {
	ID               string  `bson:"id"`
	FileName         string  `bson:"filename"`
	ContentType      string  `bson:"content_type"`
	FileSize         int64   `bson:"file_size"`
	Checksum         string  `bson:"checksum,omitempty"`
	StorageKey       string  `bson:"storage_key,omitempty"`
	ExtractedText    *string `bson:"extracted_text"`
	ExtractionMethod string  `bson:"extraction_method,omitempty"`
	SummaryText      *string `bson:"summary_text"`
	SummaryType      *string `bson:"summary_type"`
	MindmapSchema    *string `bson:"mindmap_schema"`
	SchemaType       *string `bson:"schema_type"`
	CreatedAt        string  `bson:"created_at"`
	UpdatedAt        string  `bson:"updated_at"`
}

// EnsureIndexes creates the unique id index and the listing index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

// Create inserts a new document.
func (r *MongoRepo) Create(ctx context.Context, doc Document) error {
	_, err := r.Coll.InsertOne(ctx, toMongo(doc))
	return err
}

// GetByID fetches a document by ID.
func (r *MongoRepo) GetByID(ctx context.Context, id string) (Document, error) {
	var raw mongoDocument
	err := r.Coll.FindOne(ctx, bson.D{{Key: "id", Value: id}}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return fromMongo(raw), nil
}

// List returns documents newest first.
func (r *MongoRepo) List(ctx context.Context, limit int) ([]Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))
	cur, err := r.Coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Document{}
	for cur.Next(ctx) {
		var raw mongoDocument
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, fromMongo(raw))
	}
	return out, cur.Err()
}

// UpdateSummary sets summary_text, summary_type and updated_at.
func (r *MongoRepo) UpdateSummary(ctx context.Context, id, text, variant string, at time.Time) error {
	return r.set(ctx, id, bson.D{
		{Key: "summary_text", Value: text},
		{Key: "summary_type", Value: variant},
		{Key: "updated_at", Value: formatTime(at)},
	})
}

// UpdateSchema sets mindmap_schema, schema_type and updated_at.
func (r *MongoRepo) UpdateSchema(ctx context.Context, id, text, variant string, at time.Time) error {
	return r.set(ctx, id, bson.D{
		{Key: "mindmap_schema", Value: text},
		{Key: "schema_type", Value: variant},
		{Key: "updated_at", Value: formatTime(at)},
	})
}

// Delete removes a document.
func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) set(ctx context.Context, id string, fields bson.D) error {
	res, err := r.Coll.UpdateOne(ctx, bson.D{{Key: "id", Value: id}}, bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toMongo(doc Document) mongoDocument {
	return mongoDocument{
		ID:               doc.ID,
		FileName:         doc.FileName,
		ContentType:      doc.ContentType,
		FileSize:         doc.FileSize,
		Checksum:         doc.Checksum,
		StorageKey:       doc.StorageKey,
		ExtractedText:    optional(doc.ExtractedText),
		ExtractionMethod: doc.ExtractionMethod,
		SummaryText:      optional(doc.SummaryText),
		SummaryType:      optional(doc.SummaryType),
		MindmapSchema:    optional(doc.SchemaText),
		SchemaType:       optional(doc.SchemaType),
		CreatedAt:        formatTime(doc.CreatedAt),
		UpdatedAt:        formatTime(doc.UpdatedAt),
	}
}

func fromMongo(raw mongoDocument) Document {
	return Document{
		ID:               raw.ID,
		FileName:         raw.FileName,
		ContentType:      raw.ContentType,
		FileSize:         raw.FileSize,
		Checksum:         raw.Checksum,
		StorageKey:       raw.StorageKey,
		ExtractedText:    deref(raw.ExtractedText),
		ExtractionMethod: raw.ExtractionMethod,
		SummaryText:      deref(raw.SummaryText),
		SummaryType:      deref(raw.SummaryType),
		SchemaText:       deref(raw.MindmapSchema),
		SchemaType:       deref(raw.SchemaType),
		CreatedAt:        parseTime(raw.CreatedAt),
		UpdatedAt:        parseTime(raw.UpdatedAt),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// mongoTimeLayout keeps nine fractional digits so string order matches time order.
const mongoTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(mongoTimeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ Repo = (*MongoRepo)(nil)
