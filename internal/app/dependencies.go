package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kiosk/internal/storage/memory"
	"github.com/vladislavdragonenkov/kiosk/internal/storage/postgres"
)

// Dependencies содержит хранилища и внешние подключения сервиса.
type Dependencies struct {
	Catalog domain.CatalogStore
	Orders  domain.OrderStore
	Intents domain.IntentStore
	Secrets domain.SecretStore

	// Store отличен от nil только при включённом PostgreSQL.
	Store    *postgres.Store
	Producer *kafka.Producer
}

// NewDependencies собирает зависимости по конфигурации: PostgreSQL при заданном
// DSN, иначе in-memory. Kafka опциональна, её отсутствие не блокирует запуск.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	items, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Catalog: memory.NewCatalogStore(items...),
	}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		deps.Store = store
		deps.Orders = postgres.NewOrderStore(store)
		deps.Intents = postgres.NewIntentStore(store)
		deps.Secrets = postgres.NewSecretStore(store)
		logger.Info("postgres storage initialized")
	} else {
		secrets := memory.NewSecretStore()
		if cfg.RelayAPIKey != "" {
			secrets.SetAPIKey(cfg.RestaurantID, "print_relay", cfg.RelayAPIKey)
		}
		deps.Orders = memory.NewOrderStore()
		deps.Intents = memory.NewIntentStore()
		deps.Secrets = secrets
		logger.Info("in-memory storage initialized")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.Producer = producer
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	return deps, nil
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close(logger *log.Entry) {
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
