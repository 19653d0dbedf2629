// Пакет payment ведёт асинхронную попытку оплаты картой: создание интента,
// периодический опрос статуса и ровно одно подтверждение заказа при одобрении.
package payment

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kiosk/internal/metrics"
)

const (
	defaultPollInterval = 2 * time.Second
	// defaultPollTimeout ограничивает длительность опроса; истечение — отдельный
	// исход timed_out, не склеиваемый с отказом провайдера.
	defaultPollTimeout = 2 * time.Minute
)

// AttemptState описывает состояние попытки оплаты.
type AttemptState string

const (
	// StatePending — интент создан, статус опрашивается.
	StatePending AttemptState = "pending"
	// StateApproved — оплата одобрена, подтверждение выполнено.
	StateApproved AttemptState = "approved"
	// StateDeclined — оплата отклонена; клиент может начать новую попытку.
	StateDeclined AttemptState = "declined"
	// StateTimedOut — опрос превысил лимит времени без терминального статуса.
	StateTimedOut AttemptState = "timed_out"
	// StateCanceled — попытка снята: диалог закрыт или начата новая попытка.
	StateCanceled AttemptState = "canceled"
)

// Terminal сообщает, завершена ли попытка.
func (s AttemptState) Terminal() bool {
	return s != StatePending
}

// ConfirmFunc выполняет путь подтверждения заказа, общий с наличной оплатой.
type ConfirmFunc func(ctx context.Context) error

// EventPublisher публикует события исходов оплаты. Реализуется *kafka.Producer.
type EventPublisher interface {
	PublishPaymentEvent(event *kafka.PaymentEvent) error
}

// Options задаёт параметры поллера.
type Options struct {
	Logger       *log.Entry
	PollInterval time.Duration
	PollTimeout  time.Duration
	Producer     EventPublisher
	RestaurantID string
}

// Option настраивает Poller.
type Option func(*Options)

// WithLogger задаёт logger для поллера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) { opts.Logger = logger }
}

// WithPollInterval задаёт период опроса интента.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *Options) { opts.PollInterval = interval }
}

// WithPollTimeout задаёт максимальную длительность опроса.
func WithPollTimeout(timeout time.Duration) Option {
	return func(opts *Options) { opts.PollTimeout = timeout }
}

// WithProducer включает публикацию событий исходов оплаты.
func WithProducer(producer EventPublisher, restaurantID string) Option {
	return func(opts *Options) {
		opts.Producer = producer
		opts.RestaurantID = restaurantID
	}
}

// Poller создаёт попытки оплаты и опрашивает их до терминального статуса.
type Poller struct {
	intents      domain.IntentStore
	interval     time.Duration
	timeout      time.Duration
	producer     EventPublisher
	restaurantID string
	logger       *log.Entry
	metrics      *metrics.KioskMetrics
}

// NewPoller создаёт поллер оплат.
func NewPoller(intents domain.IntentStore, options ...Option) *Poller {
	opts := Options{
		PollInterval: defaultPollInterval,
		PollTimeout:  defaultPollTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "payment-poller")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}

	return &Poller{
		intents:      intents,
		interval:     opts.PollInterval,
		timeout:      opts.PollTimeout,
		producer:     opts.Producer,
		restaurantID: opts.RestaurantID,
		logger:       logger,
		metrics:      metrics.NewKioskMetrics(),
	}
}

// Attempt — одна активная или завершённая попытка оплаты.
type Attempt struct {
	IntentID string

	mu      sync.Mutex
	state   AttemptState
	message string

	cancel    context.CancelFunc
	done      chan struct{}
	confirmed bool
}

// State возвращает текущее состояние и сообщение провайдера (для declined).
func (a *Attempt) State() (AttemptState, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.message
}

// Cancel снимает попытку: таймер останавливается до следующего тика.
// Терминальные попытки не трогаем.
func (a *Attempt) Cancel() {
	a.mu.Lock()
	if a.state == StatePending {
		a.state = StateCanceled
	}
	a.mu.Unlock()
	a.cancel()
}

// Done закрывается по завершении горутины опроса; в тестах — точка синхронизации.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Start создаёт платёжный интент и запускает опрос его статуса.
// На попытку существует ровно один опрашивающий таймер; confirm вызывается
// не более одного раза, повторное наблюдение approved — no-op.
func (p *Poller) Start(ctx context.Context, amount decimal.Decimal, confirm ConfirmFunc) (*Attempt, error) {
	intent, err := p.intents.CreateIntent(ctx, domain.PaymentIntent{
		Amount: amount,
		Status: domain.PaymentIntentPending,
	})
	if err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	attempt := &Attempt{
		IntentID: intent.ID,
		state:    StatePending,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	p.metrics.RecordAttemptStarted()
	go p.run(pollCtx, attempt, confirm)

	p.logger.WithFields(log.Fields{
		"intent_id": intent.ID,
		"amount":    amount.StringFixed(2),
	}).Info("payment attempt started")

	return attempt, nil
}

func (p *Poller) run(ctx context.Context, attempt *Attempt, confirm ConfirmFunc) {
	defer close(attempt.done)
	defer p.metrics.RecordAttemptFinished()
	defer attempt.cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(p.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			p.finish(attempt, StateCanceled, "")
			return
		case <-deadline.C:
			p.finish(attempt, StateTimedOut, "")
			p.logger.WithField("intent_id", attempt.IntentID).Warn("payment poll timed out")
			return
		case <-ticker.C:
			if p.pollOnce(ctx, attempt, confirm) {
				return
			}
		}
	}
}

// pollOnce выполняет один опрос; возвращает true, когда попытка завершена.
func (p *Poller) pollOnce(ctx context.Context, attempt *Attempt, confirm ConfirmFunc) bool {
	p.metrics.RecordPollTick()

	intent, err := p.intents.GetIntent(ctx, attempt.IntentID)
	if err != nil {
		// Временный сбой чтения не завершает попытку; следующий тик повторит опрос.
		p.logger.WithError(err).WithField("intent_id", attempt.IntentID).Warn("failed to read payment intent")
		return false
	}

	switch intent.Status {
	case domain.PaymentIntentApproved:
		p.handleApproved(ctx, attempt, confirm)
		return true
	case domain.PaymentIntentDeclined:
		message := intent.RelayMessage
		if message == "" {
			message = "Payment was declined. Please try again."
		}
		p.finish(attempt, StateDeclined, message)
		p.logger.WithFields(log.Fields{
			"intent_id": attempt.IntentID,
			"message":   message,
		}).Info("payment declined")
		return true
	default:
		// pending: подтверждение не запускается.
		return false
	}
}

func (p *Poller) handleApproved(ctx context.Context, attempt *Attempt, confirm ConfirmFunc) {
	attempt.mu.Lock()
	if attempt.confirmed || attempt.state.Terminal() {
		attempt.mu.Unlock()
		return
	}
	// Состояние фиксируется до вызова confirm: закрытие диалога во время
	// подтверждения уже не может отменить одобренную оплату.
	attempt.confirmed = true
	attempt.state = StateApproved
	attempt.mu.Unlock()
	p.metrics.RecordPaymentOutcome(string(StateApproved))
	p.publishOutcome(kafka.EventTypePaymentApproved, attempt.IntentID, "")

	// Контекст отвязывается от снятия попытки: Cancel во время confirm
	// не должен прервать запись уже одобренного заказа.
	// Отказ печати или хранилища внутри confirm не считается отказом оплаты.
	if err := confirm(context.WithoutCancel(ctx)); err != nil {
		p.logger.WithError(err).WithField("intent_id", attempt.IntentID).
			Error("confirmation after approval failed")
	}
	p.logger.WithField("intent_id", attempt.IntentID).Info("payment approved, order confirmed")
}

func (p *Poller) finish(attempt *Attempt, state AttemptState, message string) {
	attempt.mu.Lock()
	if attempt.state.Terminal() {
		attempt.mu.Unlock()
		return
	}
	attempt.state = state
	attempt.message = message
	attempt.mu.Unlock()

	p.metrics.RecordPaymentOutcome(string(state))

	switch state {
	case StateDeclined:
		p.publishOutcome(kafka.EventTypePaymentDeclined, attempt.IntentID, message)
	case StateTimedOut:
		p.publishOutcome(kafka.EventTypePaymentTimedOut, attempt.IntentID, "")
	}
}

// publishOutcome отправляет событие исхода оплаты, если producer настроен.
func (p *Poller) publishOutcome(eventType kafka.EventType, intentID, message string) {
	if p.producer == nil {
		return
	}
	event := kafka.NewPaymentEvent(eventType, intentID, p.restaurantID, message)
	if err := p.producer.PublishPaymentEvent(event); err != nil {
		p.logger.WithError(err).WithField("intent_id", intentID).
			Warn("failed to publish payment event to kafka")
	}
}
