package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// KioskMetrics содержит метрики подтверждения заказов, оплат и печати.
type KioskMetrics struct {
	// Счётчики заказов
	ordersConfirmed *prometheus.CounterVec
	checkoutErrors  prometheus.Counter

	// Гистограмма времени подтверждения
	checkoutDuration prometheus.Histogram

	// Оплаты
	paymentOutcomes *prometheus.CounterVec
	activeAttempts  prometheus.Gauge
	pollTicks       prometheus.Counter

	// Печать
	printJobs *prometheus.CounterVec
}

// NewKioskMetrics создаёт новый экземпляр метрик киоска.
func NewKioskMetrics() *KioskMetrics {
	return newKioskMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newKioskMetricsWithRegisterer(registerer prometheus.Registerer) *KioskMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &KioskMetrics{
		ordersConfirmed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kiosk_orders_confirmed_total",
			Help: "Total number of confirmed orders grouped by payment method",
		}, []string{"method"}),
		checkoutErrors: registerCounter(registerer, prometheus.CounterOpts{
			Name: "kiosk_checkout_errors_total",
			Help: "Total number of checkout attempts rejected before confirmation",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "kiosk_checkout_duration_seconds",
			Help:    "Duration of the order confirmation path in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		paymentOutcomes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kiosk_payment_outcomes_total",
			Help: "Total number of card payment attempts grouped by outcome",
		}, []string{"outcome"}),
		activeAttempts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "kiosk_active_payment_attempts",
			Help: "Number of card payment attempts currently being polled",
		}),
		pollTicks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "kiosk_payment_poll_ticks_total",
			Help: "Total number of payment intent status polls",
		}),
		printJobs: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "kiosk_print_jobs_total",
			Help: "Total number of print jobs grouped by channel and result",
		}, []string{"channel", "result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderConfirmed увеличивает счётчик подтверждённых заказов.
func (m *KioskMetrics) RecordOrderConfirmed(method string) {
	m.ordersConfirmed.WithLabelValues(method).Inc()
}

// RecordCheckoutError увеличивает счётчик отклонённых подтверждений.
func (m *KioskMetrics) RecordCheckoutError() {
	m.checkoutErrors.Inc()
}

// RecordCheckoutDuration записывает время пути подтверждения.
func (m *KioskMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordPaymentOutcome увеличивает счётчик исходов оплаты (approved/declined/timeout/canceled).
func (m *KioskMetrics) RecordPaymentOutcome(outcome string) {
	m.paymentOutcomes.WithLabelValues(outcome).Inc()
}

// RecordAttemptStarted увеличивает число активных попыток оплаты.
func (m *KioskMetrics) RecordAttemptStarted() {
	m.activeAttempts.Inc()
}

// RecordAttemptFinished уменьшает число активных попыток оплаты.
func (m *KioskMetrics) RecordAttemptFinished() {
	m.activeAttempts.Dec()
}

// RecordPollTick увеличивает счётчик опросов платёжного интента.
func (m *KioskMetrics) RecordPollTick() {
	m.pollTicks.Inc()
}

// RecordPrintJob увеличивает счётчик заданий печати по каналу и результату.
func (m *KioskMetrics) RecordPrintJob(channel, result string) {
	m.printJobs.WithLabelValues(channel, result).Inc()
}
