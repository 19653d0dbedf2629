// Пакет app собирает сервис киоска: хранилища, путь подтверждения, поллер
// оплат, HTTP API и сервер метрик с health-пробами.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	healthcheck "github.com/vladislavdragonenkov/kiosk/internal/health"
	"github.com/vladislavdragonenkov/kiosk/internal/service/checkout"
	"github.com/vladislavdragonenkov/kiosk/internal/service/httpapi"
	"github.com/vladislavdragonenkov/kiosk/internal/service/payment"
	"github.com/vladislavdragonenkov/kiosk/internal/service/pricing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/printing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
	"github.com/vladislavdragonenkov/kiosk/internal/version"
)

// Config описывает настройки запуска сервиса киоска.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// PostgresDSN включает постоянное хранилище; пустое значение — in-memory.
	PostgresDSN string
	// KafkaBrokers включает публикацию событий; пустой список — без Kafka.
	KafkaBrokers []string
	// CatalogFile — путь к JSON-файлу каталога меню.
	CatalogFile string

	// RelayEndpoint — URL внешнего print-relay; пустой — канал relay выключен.
	RelayEndpoint string
	PrinterIDs    []string
	// RelayAPIKey заполняет in-memory хранилище секретов для RestaurantID.
	RelayAPIKey    string
	RestaurantID   string
	SpoolerEnabled bool
	Device         string

	RestaurantName        string
	Location              string
	Currency              string
	DefaultTaxRate        decimal.Decimal
	TableSelectionEnabled bool

	PollInterval time.Duration
	PollTimeout  time.Duration

	// PaymentSimulator: "" — выключен, "approve" или "decline" — исход симуляции.
	PaymentSimulator string
	SimulatorDelay   time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:       ":8080",
		MetricsAddr:    ":9090",
		RestaurantName: "Kiosk",
		Currency:       "USD",
		DefaultTaxRate: pricing.DefaultTaxRate,
		SpoolerEnabled: true,
		Device:         string(printing.DeviceDesktop),
	}
}

// Run запускает сервис и блокируется до отмены контекста или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close(logger)

	rc := receipt.Context{
		RestaurantName: cfg.RestaurantName,
		Location:       cfg.Location,
		Currency:       cfg.Currency,
		DefaultTaxRate: cfg.DefaultTaxRate,
	}

	var relay printing.Relay
	printerIDs := cfg.PrinterIDs
	if cfg.RelayEndpoint != "" {
		relay = printing.NewHTTPRelay(cfg.RelayEndpoint)
	} else if len(printerIDs) > 0 {
		logger.Warn("printer ids configured without relay endpoint, relay channel disabled")
		printerIDs = nil
	}

	var spooler printing.Spooler
	if cfg.SpoolerEnabled {
		spooler = printing.NewWriterSpooler(os.Stdout, rc)
	}

	dispatcher := printing.NewDispatcher(relay, spooler, deps.Secrets, printing.Options{
		SpoolerEnabled: cfg.SpoolerEnabled,
		Device:         printing.DeviceClass(cfg.Device),
	}, logger.WithField("layer", "printing"))

	confirmer := checkout.NewConfirmer(
		deps.Orders,
		dispatcher,
		deps.Producer,
		rc,
		checkout.Options{
			TableSelectionEnabled: cfg.TableSelectionEnabled,
			PrinterIDs:            printerIDs,
		},
		nil,
		logger.WithField("layer", "checkout"),
	)

	pollerOpts := []payment.Option{payment.WithLogger(logger.WithField("layer", "payment"))}
	if cfg.PollInterval > 0 {
		pollerOpts = append(pollerOpts, payment.WithPollInterval(cfg.PollInterval))
	}
	if cfg.PollTimeout > 0 {
		pollerOpts = append(pollerOpts, payment.WithPollTimeout(cfg.PollTimeout))
	}
	if deps.Producer != nil {
		pollerOpts = append(pollerOpts, payment.WithProducer(deps.Producer, cfg.RestaurantID))
	}
	poller := payment.NewPoller(deps.Intents, pollerOpts...)

	server := httpapi.NewServer(
		deps.Catalog,
		deps.Orders,
		deps.Intents,
		confirmer,
		poller,
		rc,
		logger.WithField("layer", "httpapi"),
	)

	if cfg.PaymentSimulator != "" {
		approve := cfg.PaymentSimulator == "approve"
		sim := payment.NewSimulator(deps.Intents, cfg.SimulatorDelay, approve, logger.WithField("layer", "payment"))
		server.EnableSimulator(sim)
		logger.WithField("outcome", cfg.PaymentSimulator).Warn("payment simulator enabled, do not use in production")
	}

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
