package payment

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
)

const defaultSimulatorDelay = 6 * time.Second

// Simulator — заглушка платёжного провайдера для разработки и демо: переводит
// интент в терминальный статус после задержки, имитируя действия клиента на
// пинпаде. В production терминальный статус приходит callback-ом провайдера.
type Simulator struct {
	intents domain.IntentStore
	delay   time.Duration
	// approve определяет исход; false имитирует отказ провайдера.
	approve        bool
	declineMessage string
	logger         *log.Entry
}

// NewSimulator создаёт симулятор провайдера с заданным исходом.
func NewSimulator(intents domain.IntentStore, delay time.Duration, approve bool, logger *log.Entry) *Simulator {
	if delay <= 0 {
		delay = defaultSimulatorDelay
	}
	if logger == nil {
		logger = log.WithField("component", "payment-simulator")
	}
	return &Simulator{
		intents:        intents,
		delay:          delay,
		approve:        approve,
		declineMessage: "Card declined by issuer.",
		logger:         logger,
	}
}

// Resolve запускает отложенный перевод интента в терминальный статус.
// Уже разрешённый интент не трогается.
func (s *Simulator) Resolve(ctx context.Context, intentID string) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}

		status := domain.PaymentIntentApproved
		message := ""
		if !s.approve {
			status = domain.PaymentIntentDeclined
			message = s.declineMessage
		}

		if err := s.intents.UpdateIntent(ctx, intentID, status, message); err != nil {
			s.logger.WithError(err).WithField("intent_id", intentID).
				Debug("simulated resolution skipped")
			return
		}
		s.logger.WithFields(log.Fields{
			"intent_id": intentID,
			"status":    status,
		}).Info("intent resolved by simulator")
	}()
}
