package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"docbrains-backend/internal/chat"
	"docbrains-backend/internal/documents"
	"docbrains-backend/internal/enrich"
	"docbrains-backend/internal/export"
	"docbrains-backend/internal/extract"
	"docbrains-backend/internal/llm"
	"docbrains-backend/internal/llm/openai"
	"docbrains-backend/internal/services/health"
	"docbrains-backend/internal/shared/config"
	"docbrains-backend/internal/shared/server"
	"docbrains-backend/internal/shared/storage/db"
	"docbrains-backend/internal/shared/storage/object"
	localstore "docbrains-backend/internal/shared/storage/object/local"
	s3store "docbrains-backend/internal/shared/storage/object/s3"
	mongostore "docbrains-backend/internal/shared/storage/mongo"
	"docbrains-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Mongo            *mongo.Client
	Store            object.ObjectStore
	LLM              llm.Client
	DocumentsRepo    documents.Repo
	ChatRepo         chat.Repo
	DocumentsService *documents.Service
	ChatService      *chat.Service
	Health           *health.Service

	ownsDB bool
}

// Build constructs stores, clients, services and the router from cfg.
// In dev-like environments unreachable databases degrade to in-memory repositories.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	if err := app.buildPersistence(ctx); err != nil {
		app.Close(context.Background())
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close(context.Background())
		return nil, err
	}
	app.Store = store

	llmClient, err := buildLLM(cfg)
	if err != nil {
		app.Close(context.Background())
		return nil, err
	}
	app.LLM = llmClient

	if err := app.buildServices(); err != nil {
		app.Close(context.Background())
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		ChatHandler:     chat.NewHandler(app.ChatService),
		Health:          app.Health,
	})
	return app, nil
}

// Close releases database connections. It is safe to call more than once.
func (a *App) Close(ctx context.Context) {
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo.disconnect_failed", map[string]any{"error": err})
		}
		a.Mongo = nil
	}
	if a.DB != nil && a.ownsDB {
		if err := a.DB.Close(); err != nil {
			telemetry.Warn("bootstrap.db.close_failed", map[string]any{"error": err})
		}
		a.DB = nil
	}
}

func (a *App) buildPersistence(ctx context.Context) error {
	cfg := a.Config
	switch cfg.DocumentStore {
	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURL, mongostore.DefaultOptions())
		if err != nil {
			return a.degrade("mongo", err)
		}
		a.Mongo = client
		database := client.Database(cfg.DBName)
		docRepo := documents.NewMongoRepo(database.Collection(mongostore.DocumentsCollection))
		if err := docRepo.EnsureIndexes(ctx); err != nil {
			telemetry.Warn("bootstrap.mongo.indexes_failed", map[string]any{"error": err})
		}
		a.DocumentsRepo = docRepo
		a.ChatRepo = chat.NewMongoRepo(database.Collection(mongostore.ChatCollection))
		return nil

	case config.StorePostgres:
		sqlDB, err := connectSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return a.degrade("postgres", err)
		}
		a.DB = sqlDB
		a.ownsDB = !db.IsLambdaRuntime()
		if cfg.IsDevLike() {
			if err := db.RunMigrations(ctx, sqlDB); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		a.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		a.ChatRepo = &chat.PGRepo{DB: sqlDB}
		return nil

	default:
		telemetry.Info("bootstrap.memory_store", map[string]any{"env": cfg.Env})
		a.useMemory()
		return nil
	}
}

// degrade falls back to memory in dev-like environments and fails otherwise.
func (a *App) degrade(store string, err error) error {
	if !a.Config.IsDevLike() {
		return err
	}
	telemetry.Warn("bootstrap.store_unavailable", map[string]any{"store": store, "error": err})
	a.useMemory()
	return nil
}

func (a *App) useMemory() {
	a.DocumentsRepo = documents.NewMemoryRepo()
	a.ChatRepo = chat.NewMemoryRepo()
}

func connectSQL(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, databaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	}
	return db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if cfg.LLMProvider != "openai" {
		return llm.PlaceholderClient{}, nil
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"reason": "LLM_API_KEY empty"})
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		VisionModel: cfg.LLMVisionModel,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	return client, nil
}

func (a *App) buildServices() error {
	generator, err := enrich.NewGenerator(a.LLM)
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	renderer := export.NewRenderer(a.Config.ExportDir)
	if a.Config.ExportFontPath != "" {
		if err := renderer.LoadFont(a.Config.ExportFontPath); err != nil {
			return err
		}
	}

	a.DocumentsService = &documents.Service{
		Repo:           a.DocumentsRepo,
		Store:          a.Store,
		Extractor:      extract.New(a.LLM, a.Config.MinTextLength),
		Generator:      generator,
		Renderer:       renderer,
		MaxUploadBytes: a.Config.MaxUploadBytes,
	}
	a.ChatService = &chat.Service{
		Repo:      a.ChatRepo,
		Documents: a.DocumentsService,
		Replier:   generator,
	}
	a.Health = health.NewService(a.healthChecks()...)

	if a.DocumentsRepo == nil || a.ChatRepo == nil {
		return errors.New("failed to initialize repositories")
	}
	return nil
}

func (a *App) healthChecks() []health.Check {
	var checks []health.Check
	if client := a.Mongo; client != nil {
		checks = append(checks, health.Check{Name: "mongo", Ping: func(ctx context.Context) error {
			return mongostore.Ping(ctx, client, 0)
		}})
	}
	if sqlDB := a.DB; sqlDB != nil {
		checks = append(checks, health.Check{Name: "postgres", Ping: func(ctx context.Context) error {
			return db.Ping(ctx, sqlDB, 0)
		}})
	}
	return checks
}
