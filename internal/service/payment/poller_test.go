package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/kiosk/internal/storage/memory"
)

type confirmCounter struct {
	mu  sync.Mutex
	cnt int
	err error
}

func (c *confirmCounter) confirm(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cnt++
	return c.err
}

func (c *confirmCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cnt
}

func fastPoller(intents domain.IntentStore) *Poller {
	return NewPoller(intents,
		WithLogger(log.New().WithField("test", "poller")),
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(time.Second),
	)
}

func waitDone(t *testing.T, attempt *Attempt) {
	t.Helper()
	select {
	case <-attempt.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("attempt did not finish in time")
	}
}

func TestPoller_ApprovedConfirmsOnce(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(12.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if state, _ := attempt.State(); state != StatePending {
		t.Fatalf("expected pending, got %s", state)
	}

	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	if state, _ := attempt.State(); state != StateApproved {
		t.Fatalf("expected approved, got %s", state)
	}
	if confirmer.count() != 1 {
		t.Fatalf("expected exactly one confirmation, got %d", confirmer.count())
	}
}

func TestPoller_PendingNeverConfirms(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if confirmer.count() != 0 {
		t.Fatalf("pending intent must not be confirmed, got %d", confirmer.count())
	}
	attempt.Cancel()
	waitDone(t, attempt)
}

func TestPoller_Declined(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentDeclined, "Insufficient funds."); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	state, message := attempt.State()
	if state != StateDeclined {
		t.Fatalf("expected declined, got %s", state)
	}
	if message != "Insufficient funds." {
		t.Fatalf("expected provider message, got %q", message)
	}
	if confirmer.count() != 0 {
		t.Fatalf("declined intent must not be confirmed, got %d", confirmer.count())
	}
}

func TestPoller_DeclinedFallbackMessage(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), (&confirmCounter{}).confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentDeclined, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	if _, message := attempt.State(); message == "" {
		t.Fatal("expected fallback decline message")
	}
}

func TestPoller_Timeout(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := NewPoller(intents,
		WithLogger(log.New().WithField("test", "poller")),
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(30*time.Millisecond),
	)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, attempt)

	// Истечение лимита — отдельный исход, не склеиваемый с отказом провайдера.
	if state, _ := attempt.State(); state != StateTimedOut {
		t.Fatalf("expected timed_out, got %s", state)
	}
	if confirmer.count() != 0 {
		t.Fatalf("timed out attempt must not confirm, got %d", confirmer.count())
	}
}

func TestPoller_CancelStopsPolling(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	attempt.Cancel()
	waitDone(t, attempt)

	if state, _ := attempt.State(); state != StateCanceled {
		t.Fatalf("expected canceled, got %s", state)
	}

	// Одобрение после отмены уже не наблюдается.
	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if confirmer.count() != 0 {
		t.Fatalf("canceled attempt must not confirm, got %d", confirmer.count())
	}
}

func TestPoller_CancelAfterApprovedIsNoop(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)
	attempt.Cancel()

	if state, _ := attempt.State(); state != StateApproved {
		t.Fatalf("cancel must not undo approval, got %s", state)
	}
}

func TestPoller_SurvivesRequestContextCancel(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)
	confirmer := &confirmCounter{}

	// Контекст HTTP-запроса, запустившего попытку, отменяется сразу после старта:
	// опрос продолжается независимо от него.
	ctx, cancel := context.WithCancel(context.Background())
	attempt, err := poller.Start(ctx, decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	if state, _ := attempt.State(); state != StateApproved {
		t.Fatalf("expected approved despite request cancel, got %s", state)
	}
	if confirmer.count() != 1 {
		t.Fatalf("expected one confirmation, got %d", confirmer.count())
	}
}

func TestSimulator_ResolvesIntent(t *testing.T) {
	intents := memory.NewIntentStore()
	intent, err := intents.CreateIntent(context.Background(), domain.PaymentIntent{
		Amount: decimal.NewFromFloat(5.00),
		Status: domain.PaymentIntentPending,
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	sim := NewSimulator(intents, 5*time.Millisecond, true, log.New().WithField("test", "simulator"))
	sim.Resolve(context.Background(), intent.ID)

	deadline := time.Now().Add(time.Second)
	for {
		got, err := intents.GetIntent(context.Background(), intent.ID)
		if err != nil {
			t.Fatalf("get intent: %v", err)
		}
		if got.Status == domain.PaymentIntentApproved {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("intent not resolved, status %s", got.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []*kafka.PaymentEvent
}

func (r *eventRecorder) PublishPaymentEvent(event *kafka.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) recorded() []*kafka.PaymentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*kafka.PaymentEvent(nil), r.events...)
}

func eventPoller(intents domain.IntentStore, recorder *eventRecorder, timeout time.Duration) *Poller {
	return NewPoller(intents,
		WithLogger(log.New().WithField("test", "poller")),
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(timeout),
		WithProducer(recorder, "r1"),
	)
}

func TestPoller_PublishesApprovedEvent(t *testing.T) {
	intents := memory.NewIntentStore()
	recorder := &eventRecorder{}
	poller := eventPoller(intents, recorder, time.Second)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(12.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	events := recorder.recorded()
	if len(events) != 1 {
		t.Fatalf("expected one payment event, got %d", len(events))
	}
	if events[0].EventType != kafka.EventTypePaymentApproved {
		t.Fatalf("unexpected event type %s", events[0].EventType)
	}
	if events[0].IntentID != attempt.IntentID || events[0].RestaurantID != "r1" {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestPoller_PublishesDeclinedEvent(t *testing.T) {
	intents := memory.NewIntentStore()
	recorder := &eventRecorder{}
	poller := eventPoller(intents, recorder, time.Second)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentDeclined, "Card expired."); err != nil {
		t.Fatalf("update intent: %v", err)
	}
	waitDone(t, attempt)

	events := recorder.recorded()
	if len(events) != 1 {
		t.Fatalf("expected one payment event, got %d", len(events))
	}
	if events[0].EventType != kafka.EventTypePaymentDeclined {
		t.Fatalf("unexpected event type %s", events[0].EventType)
	}
	if events[0].Message != "Card expired." {
		t.Fatalf("unexpected message %q", events[0].Message)
	}
}

func TestPoller_PublishesTimedOutEvent(t *testing.T) {
	intents := memory.NewIntentStore()
	recorder := &eventRecorder{}
	poller := eventPoller(intents, recorder, 20*time.Millisecond)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitDone(t, attempt)

	if state, _ := attempt.State(); state != StateTimedOut {
		t.Fatalf("expected timed_out, got %s", state)
	}
	events := recorder.recorded()
	if len(events) != 1 {
		t.Fatalf("expected one payment event, got %d", len(events))
	}
	if events[0].EventType != kafka.EventTypePaymentTimedOut {
		t.Fatalf("unexpected event type %s", events[0].EventType)
	}
}

func TestPoller_CanceledPublishesNothing(t *testing.T) {
	intents := memory.NewIntentStore()
	recorder := &eventRecorder{}
	poller := eventPoller(intents, recorder, time.Second)
	confirmer := &confirmCounter{}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(5.00), confirmer.confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	attempt.Cancel()
	waitDone(t, attempt)

	if events := recorder.recorded(); len(events) != 0 {
		t.Fatalf("canceled attempt must not publish events, got %d", len(events))
	}
}

func TestPoller_CancelDuringConfirmDoesNotCancelContext(t *testing.T) {
	intents := memory.NewIntentStore()
	poller := fastPoller(intents)

	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu     sync.Mutex
		ctxErr error
		called bool
	)
	confirm := func(ctx context.Context) error {
		close(started)
		<-release
		mu.Lock()
		ctxErr = ctx.Err()
		called = true
		mu.Unlock()
		return nil
	}

	attempt, err := poller.Start(context.Background(), decimal.NewFromFloat(12.00), confirm)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := intents.UpdateIntent(context.Background(), attempt.IntentID, domain.PaymentIntentApproved, ""); err != nil {
		t.Fatalf("update intent: %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation did not start")
	}
	attempt.Cancel()
	close(release)
	waitDone(t, attempt)

	mu.Lock()
	defer mu.Unlock()
	if !called {
		t.Fatal("confirmation was not invoked")
	}
	if ctxErr != nil {
		t.Fatalf("confirmation context must survive cancel, got %v", ctxErr)
	}
	if state, _ := attempt.State(); state != StateApproved {
		t.Fatalf("expected approved, got %s", state)
	}
}
