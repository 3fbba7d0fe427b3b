// Package app builds every long-lived dependency once from configuration
// and hands them to the HTTP server and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dev-mohitbeniwal/grantflow/audit"
	"github.com/dev-mohitbeniwal/grantflow/config"
	"github.com/dev-mohitbeniwal/grantflow/dao"
	"github.com/dev-mohitbeniwal/grantflow/dao/memory"
	"github.com/dev-mohitbeniwal/grantflow/dao/postgres"
	"github.com/dev-mohitbeniwal/grantflow/db"
	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/notification"
	"github.com/dev-mohitbeniwal/grantflow/service"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type App struct {
	Config    *config.Configuration
	Stores    dao.Stores
	EventBus  *util.EventBus
	Services  *service.Services
	Limiter   *db.RateLimiter
	Publisher notification.Publisher

	neo4jDriver neo4j.DriverWithContext
	gormDB      *gorm.DB
	redisClient *redis.Client
}

// New connects the configured backends and wires the service graph.
func New(ctx context.Context, cfg *config.Configuration) (*App, error) {
	a := &App{Config: cfg, EventBus: util.NewEventBus()}

	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var (
		roleCache service.RoleCache
		locker    util.Locker
	)
	if cfg.Redis.Addr != "" {
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redisClient = client
		roleCache = db.NewAdminRoleCache(client, cfg.Redis.AdminCacheTTL)
		locker = db.NewRedisLocker(client, cfg.Redis.LockTTL)
		a.Limiter = db.NewRateLimiter(client)
	} else {
		logger.Warn("Redis not configured; using in-process locks and no admin role cache")
		locker = util.NewKeyedMutex()
	}

	publisher, err := newPublisher(cfg.Notification)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Publisher = publisher

	services, err := service.InitializeServices(service.Dependencies{
		Stores:         a.Stores,
		RoleCache:      roleCache,
		Locker:         locker,
		Notifier:       notification.NewDispatcher(a.Stores.Notifications, publisher, cfg.Notification.Retention),
		AuditService:   newAuditService(cfg.Elasticsearch),
		RoleBinder:     service.NewLoggingRoleBinder(),
		ValidationUtil: util.NewValidationUtil(),
		EventBus:       a.EventBus,
		Engine: service.EngineConfig{
			RequiredApprovals: cfg.Lifecycle.RequiredApprovals,
			MaxWriteRetries:   cfg.Lifecycle.MaxWriteRetries,
			GrantIssueRetries: cfg.Lifecycle.GrantIssueRetries,
		},
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = services
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.Config.Store.Driver {
	case "neo4j":
		driver, err := db.NewNeo4jDriver(ctx, a.Config.Neo4j)
		if err != nil {
			return err
		}
		a.neo4jDriver = driver

		requests := dao.NewRequestDAO(driver)
		grants := dao.NewGrantDAO(driver)
		notifications := dao.NewNotificationDAO(driver)
		admins := dao.NewAdminDAO(driver)
		for _, ensure := range []func(context.Context) error{
			requests.EnsureUniqueConstraint,
			grants.EnsureUniqueConstraint,
			notifications.EnsureUniqueConstraint,
			admins.EnsureUniqueConstraint,
		} {
			if err := ensure(ctx); err != nil {
				return err
			}
		}
		a.Stores = dao.Stores{Requests: requests, Grants: grants, Notifications: notifications, Admins: admins}

	case "postgres":
		gdb, err := db.NewPostgres(a.Config.Postgres)
		if err != nil {
			return err
		}
		a.gormDB = gdb

		store := postgres.NewStore(gdb)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.Stores = store.Stores()

	case "memory":
		logger.Warn("Using in-memory stores; state is lost on restart")
		a.Stores = memory.NewStores()

	default:
		return fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}

	logger.Info("Record stores ready", zap.String("driver", a.Config.Store.Driver))
	return nil
}

func newPublisher(cfg config.NotificationConfiguration) (notification.Publisher, error) {
	switch cfg.Transport {
	case "rabbitmq":
		return notification.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, errors.New("notification.kafka.brokers is empty")
		}
		return notification.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic), nil
	default:
		return notification.NewLogPublisher(), nil
	}
}

// newAuditService falls back to a log-only trail when Elasticsearch is not usable.
func newAuditService(cfg config.ElasticsearchConfiguration) audit.Service {
	if cfg.URL == "" {
		return audit.NewService(nil)
	}
	repo, err := audit.NewElasticsearchRepository(cfg.URL, cfg.AuditIndex)
	if err != nil {
		logger.Warn("Elasticsearch audit repository unavailable, auditing to log only", zap.Error(err))
		return audit.NewService(nil)
	}
	return audit.NewService(repo)
}

// Start begins background processing of event handler errors.
func (a *App) Start(ctx context.Context) {
	a.EventBus.Start(ctx)
}

// Close drains in-flight side effects and then releases connections.
func (a *App) Close() {
	a.EventBus.Wait()
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Error("Error closing notification publisher", zap.Error(err))
		}
	}
	db.CloseRedis(a.redisClient)
	db.ClosePostgres(a.gormDB)
	db.CloseNeo4j(a.neo4jDriver)
}
