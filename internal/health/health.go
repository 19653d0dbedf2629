// Пакет health отдаёт состояние компонентов киоска для проб оркестратора.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status — статус компонента или сервиса в целом.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — сводный ответ /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker выполняет проверку одного компонента.
type Checker interface {
	Check() Check
}

// Handler агрегирует зарегистрированные проверки.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

// NewHandler создаёт health handler с меткой версии сборки.
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker регистрирует проверку компонента под именем.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// evaluate прогоняет все проверки и сводит общий статус:
// любой unhealthy перевешивает degraded, degraded перевешивает healthy.
func (h *Handler) evaluate() Response {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		checkers[name] = checker
	}
	h.mu.RUnlock()

	checks := make(map[string]Check, len(checkers))
	overall := StatusHealthy
	for name, checker := range checkers {
		check := checker.Check()
		checks[name] = check

		switch check.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
}

// ServeHTTP отдаёт подробный отчёт; unhealthy — это 503.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	response := h.evaluate()

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// ReadinessHandler — readiness probe: degraded сервис ещё принимает заказы.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	if h.evaluate().Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LivenessHandler — liveness probe, отвечает 200 пока процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// SimpleChecker оборачивает функцию проверки.
type SimpleChecker struct {
	name    string
	checkFn func() error
}

// NewSimpleChecker создаёт проверку из функции.
func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{name: name, checkFn: checkFn}
}

// Check выполняет функцию и замеряет длительность.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.checkFn()
	duration := time.Since(start)

	check := Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}
