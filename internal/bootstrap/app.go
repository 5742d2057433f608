package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ai-chat-studio/internal/ai"
	"ai-chat-studio/internal/app"
	"ai-chat-studio/internal/cache"
	"ai-chat-studio/internal/config"
	"ai-chat-studio/internal/logger"
	"ai-chat-studio/internal/model"
	postgresClient "ai-chat-studio/internal/platform/postgres"
	rabbitmqClient "ai-chat-studio/internal/platform/rabbitmq"
	redisClient "ai-chat-studio/internal/platform/redis"
	"ai-chat-studio/internal/repository"
	"ai-chat-studio/internal/store/jsonfile"
	"ai-chat-studio/internal/tts"
	"ai-chat-studio/internal/voice"
	"ai-chat-studio/internal/worker"
)

const (
	StoragePostgres = "postgres"
	StorageJSONFile = "jsonfile"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger

	// DB is nil when the JSON file backend is active.
	DB             *gorm.DB
	StorageBackend string

	Redis  *redis.Client
	MQConn *amqp.Connection

	AuthService  *app.AuthService
	OAuthService *app.OAuthService
	ChatService  *app.ChatService
	TTSClient    *tts.Client
	Voice        *voice.Processor

	ArchiveWorker *worker.ArchiveWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New(cfg.Log.File, cfg.App.Env == "prod")

	a := &App{
		Config:    cfg,
		Logger:    log,
		StartedAt: time.Now(),
	}

	users, sessions, convs, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.openRedis(ctx)
	if err := a.openRabbitMQ(ctx); err != nil {
		return nil, err
	}

	sessionTTL := time.Duration(cfg.Auth.SessionTTLDays) * 24 * time.Hour
	a.AuthService = app.NewAuthService(users, sessions, sessionTTL, cfg.Auth.BypassAuth, log)
	a.OAuthService = app.NewOAuthService(app.OAuthConfig{
		ClientID:        cfg.OAuth.ClientID,
		ClientSecret:    cfg.OAuth.ClientSecret,
		RedirectURL:     cfg.OAuth.RedirectURL,
		ApprovedDomains: cfg.OAuth.ApprovedDomains,
		ApprovedEmails:  cfg.OAuth.ApprovedEmails,
		AdminEmails:     cfg.OAuth.AdminEmails,
	}, users, a.stateStore(), a.AuthService, log)

	var historyCache app.HistoryCache
	if a.Redis != nil {
		historyCache = cache.NewHistoryCache(a.Redis, time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second)
	}
	var archiver app.MessageArchiver
	if a.MQConn != nil {
		archiver = rabbitmqClient.NewArchivePublisher(a.MQConn, cfg.RabbitMQ.ArchiveQueue)
	}

	dispatcher := ai.NewDispatcher(ai.Keys{
		Gemini:     cfg.Providers.GeminiAPIKey,
		OpenAI:     cfg.Providers.OpenAIAPIKey,
		Anthropic:  cfg.Providers.AnthropicAPIKey,
		Perplexity: cfg.Providers.PerplexityAPIKey,
	})
	a.ChatService = app.NewChatService(convs, historyCache, archiver, dispatcher, log)

	if cfg.Providers.ElevenLabsAPIKey != "" {
		a.TTSClient = tts.NewClient(cfg.Providers.ElevenLabsAPIKey)
	}

	a.Voice = voice.NewProcessor(0, log)
	a.Voice.Start(ctx)

	return a, nil
}

// openStorage selects PostgreSQL when a database URL is configured and
// reachable, otherwise the per-user JSON file backend. Falling back on a
// configured-but-unreachable database is loud, never silent.
func (a *App) openStorage(ctx context.Context) (app.UserStore, app.SessionStore, app.ConversationStore, error) {
	cfg := a.Config

	if cfg.Database.URL != "" {
		db, err := postgresClient.New(ctx, cfg.Database.URL)
		if err != nil {
			a.Logger.Warn("postgres unavailable, falling back to JSON file storage",
				zap.Error(err))
		} else {
			if err := db.AutoMigrate(
				&model.User{},
				&model.AuthSession{},
				&model.Conversation{},
				&model.ArchivedMessage{},
			); err != nil {
				return nil, nil, nil, fmt.Errorf("auto migrate tables failed: %w", err)
			}
			a.DB = db
			a.StorageBackend = StoragePostgres
			return repository.NewUserRepository(db),
				repository.NewSessionRepository(db),
				repository.NewConversationRepository(db),
				nil
		}
	}

	users, err := jsonfile.NewUserStore(cfg.Database.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	sessions, err := jsonfile.NewSessionStore(cfg.Database.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	convs, err := jsonfile.NewConversationStore(cfg.Database.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	a.StorageBackend = StorageJSONFile
	return users, sessions, convs, nil
}

// openRedis is best effort; the cache and the shared OAuth state store
// simply stay disabled when Redis is absent.
func (a *App) openRedis(ctx context.Context) {
	if a.Config.Redis.Addr == "" {
		return
	}
	client, err := redisClient.New(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
	if err != nil {
		a.Logger.Warn("redis unavailable, history cache disabled", zap.Error(err))
		return
	}
	a.Redis = client
}

func (a *App) openRabbitMQ(ctx context.Context) error {
	if a.Config.RabbitMQ.URL == "" {
		return nil
	}
	conn, err := rabbitmqClient.New(a.Config.RabbitMQ.URL)
	if err != nil {
		a.Logger.Warn("rabbitmq unavailable, message archive disabled", zap.Error(err))
		return nil
	}
	a.MQConn = conn

	// The archive worker consumes into PostgreSQL; with the JSON file
	// backend there is no audit table to write to.
	if a.DB != nil {
		archiveRepo := repository.NewArchiveRepository(a.DB)
		a.ArchiveWorker = worker.NewArchiveWorker(conn, archiveRepo, a.Config.RabbitMQ.ArchiveQueue, a.Logger)
		if err := a.ArchiveWorker.Start(ctx); err != nil {
			return fmt.Errorf("start archive worker failed: %w", err)
		}
	}
	return nil
}

// stateStore backs OAuth CSRF states with Redis when available, so
// multiple instances can share them; otherwise it is in-process.
func (a *App) stateStore() app.OAuthStateStore {
	ttl := time.Duration(a.Config.OAuth.StateTTLSeconds) * time.Second
	if a.Redis != nil {
		return cache.NewStateStore(a.Redis, ttl)
	}
	return app.NewMemoryStateStore(ttl)
}

func (a *App) Close() error {
	var closeErr error
	if a.Voice != nil {
		a.Voice.Close()
	}
	if a.ArchiveWorker != nil {
		a.ArchiveWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
