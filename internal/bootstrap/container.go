package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"heystack-be/internal/config"
	"heystack-be/internal/controller"
	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/repository"
	"heystack-be/internal/repository/contract"
	"heystack-be/internal/repository/implementation"
	"heystack-be/internal/service"
	"heystack-be/internal/websocket"
	"heystack-be/pkg/database"
	"heystack-be/pkg/dialogue/content"
	"heystack-be/pkg/dialogue/engine"
	"heystack-be/pkg/events"

	pktNats "heystack-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config *config.Config

	// Controllers
	ChatController controller.IChatController

	// Services
	ChatService     service.IChatService
	ConsumerService service.IConsumerService

	SessionStore repository.SessionStore
	WebSocketHub *websocket.Hub

	Logger     logger.ILogger
	Transcript *logger.ZapLogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	stopHub context.CancelFunc

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewContainer wires the chat stack. Content that fails validation and a
// session backend that cannot be opened are returned as errors.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	transcript := logger.NewIsolatedLogger(cfg.App.TranscriptLogPath)

	// 2. Content & engine
	catalog, err := content.Load(cfg.Content.Path, cfg.Content.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	eng := engine.New(catalog)
	sysLogger.Info(logger.ModuleEngine, "Dialogue engine ready", map[string]interface{}{
		"topics":    len(catalog.Topics),
		"knowledge": len(catalog.Knowledge),
		"handlers":  len(eng.Handlers()),
	})

	// 3. Session store
	backend, rdb, err := OpenSessionBackend(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("open %s session backend: %w", cfg.Session.Backend, err)
	}
	sessionStore, err := repository.NewSessionStore(ctx, backend, sysLogger)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	log.Printf("[INFO] Using Session Backend: %s", cfg.Session.Backend)

	// 4. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	publishers := events.Fanout{events.NewWatermillPublisher(pubSub)}

	var natsPub *pktNats.Publisher
	if cfg.Events.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.Events.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publishers = append(publishers, natsPub)
		}
	}

	consumerService := service.NewConsumerService(pubSub, transcript, sysLogger)
	if err := consumerService.Consume(ctx); err != nil {
		return nil, fmt.Errorf("subscribe transcript consumer: %w", err)
	}

	// 5. Services
	chatService := service.NewChatService(eng, sessionStore, publishers, sysLogger)

	// WebSocket Hub, fanning replies across instances when Redis is in use
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run(hubCtx)

	return &Container{
		Config:          cfg,
		ChatController:  controller.NewChatController(chatService),
		ChatService:     chatService,
		ConsumerService: consumerService,
		SessionStore:    sessionStore,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
		Transcript:      transcript,
		pubSub:          pubSub,
		natsPub:         natsPub,
		stopHub:         stopHub,
	}, nil
}

// OpenSessionBackend opens the configured durable half of the session store.
// The redis client is returned for reuse and is nil for other backends.
func OpenSessionBackend(ctx context.Context, cfg config.SessionConfig) (contract.SessionBackend, *redis.Client, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return implementation.NewFileSessionBackend(cfg.FilePath), nil, nil

	case config.BackendSQLite:
		b, err := implementation.NewSQLiteSessionBackend(cfg.SQLitePath)
		return b, nil, err

	case config.BackendRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return implementation.NewRedisSessionBackend(rdb, cfg.RedisKey), rdb, nil

	case config.BackendPostgres:
		if cfg.DatabaseConnStr == "" {
			return nil, nil, errors.New("DB_CONNECTION_STRING is required for the postgres backend")
		}
		db, err := database.NewGormDBFromDSN(cfg.DatabaseConnStr, false)
		if err != nil {
			return nil, nil, err
		}
		b, err := implementation.NewPostgresSessionBackend(db)
		return b, nil, err

	case config.BackendMemory:
		return implementation.NewMemorySessionBackend(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// Shutdown stops the event bus, waits for the transcript consumer to drain
// and flushes the session store. Only the first call does any work.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() { c.shutdownErr = c.shutdown(ctx) })
	return c.shutdownErr
}

func (c *Container) shutdown(ctx context.Context) error {
	c.stopHub()

	var errs []error
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if err := c.pubSub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close event bus: %w", err))
	}
	select {
	case <-c.ConsumerService.Done():
	case <-time.After(5 * time.Second):
		c.Logger.Warn(logger.ModuleEvents, "Transcript consumer did not drain in time", nil)
	}

	if err := c.SessionStore.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close session store: %w", err))
	} else {
		c.Logger.Info(logger.ModuleStore, "Sessions flushed", map[string]interface{}{
			"sessions": len(c.SessionStore.Senders()),
		})
	}

	_ = c.Transcript.Sync()
	_ = c.Logger.Sync()
	return errors.Join(errs...)
}
