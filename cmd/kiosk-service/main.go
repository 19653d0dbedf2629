package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/app"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfig формирует конфигурацию из переменных окружения процесса.
func readConfig() app.Config {
	return readConfigFromEnv(os.Getenv)
}

// readConfigFromEnv формирует конфигурацию, позволяя переопределить значения
// через переменные окружения; getenv инжектируется ради тестируемости.
func readConfigFromEnv(getenv func(string) string) app.Config {
	cfg := app.DefaultConfig()
	if v := getenv("KIOSK_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("KIOSK_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.PostgresDSN = getenv("KIOSK_POSTGRES_DSN")
	if v := getenv("KIOSK_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	cfg.CatalogFile = getenv("KIOSK_CATALOG_FILE")

	cfg.RelayEndpoint = getenv("KIOSK_RELAY_ENDPOINT")
	if v := getenv("KIOSK_PRINTER_IDS"); v != "" {
		cfg.PrinterIDs = strings.Split(v, ",")
	}
	cfg.RelayAPIKey = getenv("KIOSK_RELAY_API_KEY")
	if v := getenv("KIOSK_RESTAURANT_ID"); v != "" {
		cfg.RestaurantID = v
	}
	if v := getenv("KIOSK_SPOOLER_ENABLED"); v != "" {
		cfg.SpoolerEnabled = parseBool(v, cfg.SpoolerEnabled)
	}
	if v := getenv("KIOSK_DEVICE"); v != "" {
		cfg.Device = v
	}

	if v := getenv("KIOSK_RESTAURANT_NAME"); v != "" {
		cfg.RestaurantName = v
	}
	cfg.Location = getenv("KIOSK_LOCATION")
	if v := getenv("KIOSK_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := getenv("KIOSK_DEFAULT_TAX_RATE"); v != "" {
		if rate, err := decimal.NewFromString(v); err == nil {
			cfg.DefaultTaxRate = rate
		} else {
			log.WithField("value", v).Warn("invalid KIOSK_DEFAULT_TAX_RATE, using default")
		}
	}
	if v := getenv("KIOSK_TABLE_SELECTION"); v != "" {
		cfg.TableSelectionEnabled = parseBool(v, cfg.TableSelectionEnabled)
	}

	if v := getenv("KIOSK_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := getenv("KIOSK_POLL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollTimeout = d
		}
	}
	cfg.PaymentSimulator = getenv("KIOSK_PAYMENT_SIMULATOR")
	if v := getenv("KIOSK_SIMULATOR_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SimulatorDelay = d
		}
	}
	return cfg
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func main() {
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("запускаем kiosk-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("kiosk-service остановлен")
}
