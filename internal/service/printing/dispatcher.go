// Пакет printing доставляет чек на физические каналы печати: локальный спулер
// и удалённый print-relay. Каналы независимы, отказ одного не блокирует остальные
// и никогда не откатывает подтверждённый заказ.
package printing

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/metrics"
	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
)

// FailureKind классифицирует отказ канала печати.
type FailureKind string

const (
	// FailureCredential — не удалось получить ключ relay для ресторана.
	FailureCredential FailureKind = "credential"
	// FailureTransport — сетевая ошибка при обращении к relay.
	FailureTransport FailureKind = "transport"
	// FailureRejected — relay принял запрос, но отверг задание (статус + текст).
	FailureRejected FailureKind = "rejected"
	// FailureSpooler — ошибка локального спулера.
	FailureSpooler FailureKind = "spooler"
)

// RelayJob — одно задание печати для удалённого relay.
type RelayJob struct {
	PrinterID string
	Title     string
	// ContentType всегда "raw_base64": содержимое — base64 от UTF-8 байтов потока команд.
	ContentType string
	Content     string
	Source      string
	APIKey      string
}

// Relay отправляет задание на удалённый print-relay.
type Relay interface {
	Submit(ctx context.Context, job RelayJob) error
}

// Spooler печатает структурированный чек через локальный спулер устройства.
type Spooler interface {
	Print(ctx context.Context, doc *receipt.Document) error
}

// DeviceClass — класс устройства киоска; определяется снаружи, не здесь.
type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

// ChannelOutcome — результат одного канала печати.
type ChannelOutcome struct {
	// PrinterID пуст для локального спулера.
	PrinterID string
	Kind      FailureKind
	Err       error
}

// Report — сводный итог рассылки для одного консолидированного уведомления.
// Формируется уже после того, как подтверждение заказа вернулось пользователю.
type Report struct {
	OrderID      string
	OrderNumber  int
	SuccessCount int
	FailureCount int
	Failures     []ChannelOutcome
}

// Options задаёт конфигурацию диспетчера.
type Options struct {
	// SpoolerEnabled включает канал локальной печати.
	SpoolerEnabled bool
	// Device — класс устройства; на mobile/tablet спулер не вызывается.
	Device DeviceClass
	// RelayProvider — имя провайдера для выборки ключа из хранилища секретов.
	RelayProvider string
	// Source — метка источника в задании relay.
	Source string
}

// Dispatcher рассылает чек по настроенным каналам.
type Dispatcher struct {
	relay   Relay
	spooler Spooler
	secrets domain.SecretStore
	opts    Options
	logger  *log.Entry
	metrics *metrics.KioskMetrics

	// spooled хранит заказы, уже отправленные на локальный спулер: не более одного вызова на заказ.
	mu      sync.Mutex
	spooled map[string]struct{}
}

// NewDispatcher создаёт диспетчер печати.
func NewDispatcher(relay Relay, spooler Spooler, secrets domain.SecretStore, opts Options, logger *log.Entry) *Dispatcher {
	if logger == nil {
		logger = log.WithField("component", "print-dispatcher")
	}
	if opts.RelayProvider == "" {
		opts.RelayProvider = "print_relay"
	}
	if opts.Source == "" {
		opts.Source = "kiosk"
	}
	return &Dispatcher{
		relay:   relay,
		spooler: spooler,
		secrets: secrets,
		opts:    opts,
		logger:  logger,
		metrics: metrics.NewKioskMetrics(),
		spooled: make(map[string]struct{}),
	}
}

// Dispatch отправляет чек на локальный спулер и на каждый принтер из списка.
// Задания relay уходят конкурентно и независимо; метод блокируется до завершения
// всех каналов и возвращает сводный отчёт.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order, doc *receipt.Document, cmds []receipt.Command, printerIDs []string) Report {
	report := Report{OrderID: order.ID, OrderNumber: order.Number}

	if outcome, attempted := d.spoolLocal(ctx, order, doc); attempted {
		d.recordOutcome(&report, "spooler", outcome)
	}

	if len(printerIDs) == 0 {
		return report
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(receipt.Encode(cmds)))
	title := fmt.Sprintf("Order #%d", order.Number)

	outcomes := make([]ChannelOutcome, len(printerIDs))
	var wg sync.WaitGroup
	for i, printerID := range printerIDs {
		wg.Add(1)
		go func(i int, printerID string) {
			defer wg.Done()
			outcomes[i] = d.submitToRelay(ctx, order, printerID, title, encoded)
		}(i, printerID)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		d.recordOutcome(&report, "relay", outcome)
	}
	return report
}

// spoolLocal вызывает локальный спулер не более одного раза на заказ.
// Второе значение сообщает, предпринималась ли попытка.
func (d *Dispatcher) spoolLocal(ctx context.Context, order *domain.Order, doc *receipt.Document) (ChannelOutcome, bool) {
	if d.spooler == nil || !d.opts.SpoolerEnabled {
		return ChannelOutcome{}, false
	}
	if d.opts.Device == DeviceMobile || d.opts.Device == DeviceTablet {
		return ChannelOutcome{}, false
	}

	d.mu.Lock()
	if _, done := d.spooled[order.ID]; done {
		d.mu.Unlock()
		return ChannelOutcome{}, false
	}
	d.spooled[order.ID] = struct{}{}
	d.mu.Unlock()

	if err := d.spooler.Print(ctx, doc); err != nil {
		return ChannelOutcome{Kind: FailureSpooler, Err: err}, true
	}
	return ChannelOutcome{}, true
}

func (d *Dispatcher) submitToRelay(ctx context.Context, order *domain.Order, printerID, title, encoded string) ChannelOutcome {
	apiKey, err := d.secrets.RetrieveAPIKey(ctx, order.RestaurantID, d.opts.RelayProvider)
	if err != nil {
		return ChannelOutcome{
			PrinterID: printerID,
			Kind:      FailureCredential,
			Err:       fmt.Errorf("retrieve relay credential: %w", err),
		}
	}

	job := RelayJob{
		PrinterID:   printerID,
		Title:       title,
		ContentType: "raw_base64",
		Content:     encoded,
		Source:      d.opts.Source,
		APIKey:      apiKey,
	}
	if err := d.relay.Submit(ctx, job); err != nil {
		kind := FailureTransport
		if IsRelayRejection(err) {
			kind = FailureRejected
		}
		return ChannelOutcome{PrinterID: printerID, Kind: kind, Err: err}
	}
	return ChannelOutcome{PrinterID: printerID}
}

func (d *Dispatcher) recordOutcome(report *Report, channel string, outcome ChannelOutcome) {
	if outcome.Err == nil {
		report.SuccessCount++
		d.metrics.RecordPrintJob(channel, "success")
		return
	}
	report.FailureCount++
	report.Failures = append(report.Failures, outcome)
	d.metrics.RecordPrintJob(channel, "failure")
	d.logger.WithError(outcome.Err).WithFields(log.Fields{
		"order_id":     report.OrderID,
		"order_number": report.OrderNumber,
		"printer_id":   outcome.PrinterID,
		"kind":         outcome.Kind,
	}).Warn("print channel failed")
}
