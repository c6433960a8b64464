package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/accounts"
	"islaapp-backend/internal/builder"
	"islaapp-backend/internal/planner"
	"islaapp-backend/internal/projects"
	"islaapp-backend/internal/providers"
	"islaapp-backend/internal/queue"
	"islaapp-backend/internal/servicerequests"
	"islaapp-backend/internal/services/health"
	"islaapp-backend/internal/shared/config"
	"islaapp-backend/internal/shared/server"
	"islaapp-backend/internal/shared/storage/db"
	"islaapp-backend/internal/shared/storage/object"
	localstore "islaapp-backend/internal/shared/storage/object/local"
	s3store "islaapp-backend/internal/shared/storage/object/s3"
	"islaapp-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.Store
	Queue  queue.Client

	Providers       *providers.Service
	Builder         *builder.Service
	Planner         *planner.Planner
	Projects        *projects.Service
	ServiceRequests *servicerequests.Service
	Accounts        *accounts.Service
	Health          *health.Service
}

// Build prepares every dependency and the router. In dev-like environments a
// missing or unreachable database falls back to in-memory repositories.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if err := checkRequired(cfg); err != nil {
		return nil, err
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closeDB := func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB()
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		closeDB()
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Authenticator: app.Accounts,
		Health:        app.Health,
		Handlers: []server.RouteRegistrar{
			providers.NewHandler(app.Providers),
			builder.NewHandler(app.Builder),
			planner.NewHandler(app.Planner, app.Builder),
			projects.NewHandler(app.Projects),
			servicerequests.NewHandler(app.ServiceRequests),
			accounts.NewHandler(app.Accounts),
		},
	})
	return app, nil
}

// checkRequired rejects configs that would lose data outside dev: without
// a database nothing persists and without a queue provisioning jobs have no
// consumer.
func checkRequired(cfg config.Config) error {
	if config.IsDevLike(cfg.Env) {
		return nil
	}
	var missing []string
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if strings.TrimSpace(cfg.QueueURL) == "" {
		missing = append(missing, "QUEUE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required when ENV=%s", strings.Join(missing, ", "), cfg.Env)
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if config.IsDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
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

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		if !config.IsDevLike(cfg.Env) {
			return nil, fmt.Errorf("QUEUE_URL is required")
		}
		telemetry.Info("bootstrap.memory_queue", map[string]any{"env": cfg.Env})
		return queue.NewMemoryClient(), nil
	}
	return queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
}

func buildServices(app *App) error {
	catalog, err := providers.DefaultCatalog()
	if err != nil {
		return err
	}

	var (
		settingsRepo providers.SettingsRepo
		draftRepo    builder.Repo
		projectRepo  projects.Repo
		requestRepo  servicerequests.Repo
		accountRepo  accounts.Repo
	)
	if app.DB != nil {
		settingsRepo = &providers.PGRepo{DB: app.DB}
		draftRepo = &builder.PGRepo{DB: app.DB}
		projectRepo = &projects.PGRepo{DB: app.DB}
		requestRepo = &servicerequests.PGRepo{DB: app.DB}
		accountRepo = &accounts.PGRepo{DB: app.DB}
	} else {
		settingsRepo = providers.NewMemoryRepo()
		draftRepo = builder.NewMemoryRepo()
		projectRepo = projects.NewMemoryRepo()
		requestRepo = servicerequests.NewMemoryRepo()
		accountRepo = accounts.NewMemoryRepo()
	}

	app.Providers = providers.NewService(catalog, settingsRepo, providers.NewVerifier(app.Config.ProviderVerifyTimeout))
	app.Builder = builder.NewService(draftRepo, app.Providers)
	app.Planner = planner.New(app.Providers, app.Config.OpenAIModel)
	app.Projects = projects.NewService(projectRepo, app.Store)
	app.ServiceRequests = servicerequests.NewService(requestRepo, catalog, app.Queue, app.Providers)
	app.Accounts = accounts.NewService(accountRepo, app.Config.AdminAPIToken)

	queueKind := "memory"
	if _, ok := app.Queue.(*queue.SQSClient); ok {
		queueKind = "sqs"
	}
	if app.DB != nil {
		app.Health = health.NewService(app.DB, app.Config.ObjectStoreType, queueKind)
	} else {
		app.Health = health.NewService(nil, app.Config.ObjectStoreType, queueKind)
	}
	return nil
}
