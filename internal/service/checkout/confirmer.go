// Пакет checkout реализует путь подтверждения заказа, общий для наличной оплаты
// и одобренной оплаты картой: номер заказа, итоги, чек, рассылка печати, событие.
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kiosk/internal/metrics"
	"github.com/vladislavdragonenkov/kiosk/internal/service/pricing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/printing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
)

// Notifier получает сводный отчёт о печати после того, как подтверждение
// уже вернулось пользователю. Ошибки печати никогда не откатывают заказ.
type Notifier interface {
	NotifyPrintReport(report printing.Report)
}

// Request — входные данные подтверждения.
type Request struct {
	RestaurantID string
	Cart         domain.Cart
	Type         domain.OrderType
	TableID      string
	Method       domain.PaymentMethod
}

// Options задаёт конфигурацию подтверждения.
type Options struct {
	// TableSelectionEnabled включает обязательность стола для заказов в зале.
	TableSelectionEnabled bool
	// PrinterIDs — принтеры relay; пустой список означает только локальную печать.
	PrinterIDs []string
}

// Confirmer выполняет подтверждение заказа ровно один раз на попытку.
type Confirmer struct {
	orders     domain.OrderStore
	dispatcher *printing.Dispatcher
	producer   *kafka.Producer // опциональный Kafka producer
	rc         receipt.Context
	opts       Options
	notifier   Notifier
	logger     *log.Entry
	metrics    *metrics.KioskMetrics
}

// NewConfirmer создаёт путь подтверждения.
func NewConfirmer(
	orders domain.OrderStore,
	dispatcher *printing.Dispatcher,
	producer *kafka.Producer,
	rc receipt.Context,
	opts Options,
	notifier Notifier,
	logger *log.Entry,
) *Confirmer {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Confirmer{
		orders:     orders,
		dispatcher: dispatcher,
		producer:   producer,
		rc:         rc,
		opts:       opts,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics.NewKioskMetrics(),
	}
}

// TableSelectionEnabled сообщает, обязателен ли стол для заказов в зале.
func (c *Confirmer) TableSelectionEnabled() bool {
	return c.opts.TableSelectionEnabled
}

// Confirm фиксирует заказ: присваивает номер, сохраняет снимок корзины,
// строит чек и запускает рассылку печати без ожидания её завершения.
// Возврат управления означает "заказ размещён" независимо от исхода печати.
func (c *Confirmer) Confirm(ctx context.Context, req Request) (domain.Order, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordCheckoutDuration(time.Since(start))
	}()

	order := domain.Order{
		ID:           uuid.NewString(),
		RestaurantID: req.RestaurantID,
		Number:       c.nextOrderNumber(ctx, req.RestaurantID),
		Type:         req.Type,
		TableID:      req.TableID,
		Method:       req.Method,
		Lines:        req.Cart.Lines,
		Totals:       pricing.CartTotals(req.Cart, c.rc.DefaultTaxRate),
		CreatedAt:    time.Now().UTC(),
	}

	if errs := order.Validate(c.opts.TableSelectionEnabled); len(errs) > 0 {
		c.metrics.RecordCheckoutError()
		return domain.Order{}, errs[0]
	}

	// Отказ хранилища после разрешения оплаты не блокирует подтверждение:
	// заказ возвращается клиенту, потеря записи остаётся в логе для персонала.
	if err := c.orders.Create(ctx, order); err != nil {
		c.logger.WithError(err).WithFields(log.Fields{
			"order_id":     order.ID,
			"order_number": order.Number,
		}).Error("failed to persist confirmed order")
	}

	c.metrics.RecordOrderConfirmed(string(order.Method))
	c.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
		"method":       order.Method,
		"total":        order.Totals.Total.StringFixed(2),
	}).Info("order confirmed")

	c.publishOrderEvent(&order)

	doc := receipt.Build(&order, c.rc)
	cmds := doc.Commands(c.rc)
	// Рассылка печати не задерживает подтверждение; контекст отвязан от запроса.
	go c.dispatchPrints(context.WithoutCancel(ctx), order, doc, cmds)

	return order, nil
}

// nextOrderNumber возвращает count+1 на момент подтверждения. Конкурирующие
// подтверждения одного ресторана могут получить одинаковый номер; гарантируется
// только монотонное неубывание. Отказ запроса деградирует к номеру 1.
func (c *Confirmer) nextOrderNumber(ctx context.Context, restaurantID string) int {
	count, err := c.orders.CountByRestaurant(ctx, restaurantID)
	if err != nil {
		c.logger.WithError(err).WithField("restaurant_id", restaurantID).
			Warn("order count unavailable, falling back to number 1")
		return 1
	}
	return count + 1
}

func (c *Confirmer) dispatchPrints(ctx context.Context, order domain.Order, doc *receipt.Document, cmds []receipt.Command) {
	report := c.dispatcher.Dispatch(ctx, &order, doc, cmds, c.opts.PrinterIDs)

	if report.FailureCount > 0 {
		c.logger.WithFields(log.Fields{
			"order_id":     order.ID,
			"order_number": order.Number,
			"success":      report.SuccessCount,
			"failure":      report.FailureCount,
		}).Warn("print dispatch finished with failures")
	}
	if c.notifier != nil {
		c.notifier.NotifyPrintReport(report)
	}
	c.publishPrintEvent(&order, report)
}

func (c *Confirmer) publishOrderEvent(order *domain.Order) {
	if c.producer == nil {
		return // Kafka не настроен, пропускаем
	}
	event := kafka.NewOrderEvent(kafka.EventTypeOrderConfirmed, order.ID, order.RestaurantID, order.Number, map[string]interface{}{
		"method": string(order.Method),
		"type":   string(order.Type),
		"total":  order.Totals.Total.StringFixed(2),
	})
	if err := c.producer.PublishOrderEvent(event); err != nil {
		c.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event to kafka")
	}
}

func (c *Confirmer) publishPrintEvent(order *domain.Order, report printing.Report) {
	if c.producer == nil {
		return
	}
	eventType := kafka.EventTypePrintCompleted
	if report.FailureCount > 0 {
		eventType = kafka.EventTypePrintFailed
	}
	event := kafka.NewPrintEvent(eventType, order.ID, order.Number, report.SuccessCount, report.FailureCount, c.opts.PrinterIDs)
	if err := c.producer.PublishPrintEvent(event); err != nil {
		c.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish print event to kafka")
	}
}
