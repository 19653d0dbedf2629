// Пакет httpapi — REST-поверхность киоска: каталог, проверка выбора, корзина,
// подтверждение заказа и опрос оплаты. Клиент терминала общается JSON поверх HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/checkout"
	"github.com/vladislavdragonenkov/kiosk/internal/service/payment"
	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
)

// Server обрабатывает HTTP-запросы терминала.
type Server struct {
	catalog   domain.CatalogStore
	orders    domain.OrderStore
	intents   domain.IntentStore
	confirmer *checkout.Confirmer
	poller    *payment.Poller
	rc        receipt.Context
	sessions  *sessionStore
	// simulator в режиме разработки разрешает интенты вместо внешнего провайдера.
	simulator *payment.Simulator
	logger    *log.Entry
}

// NewServer создаёт HTTP-сервер киоска.
func NewServer(
	catalog domain.CatalogStore,
	orders domain.OrderStore,
	intents domain.IntentStore,
	confirmer *checkout.Confirmer,
	poller *payment.Poller,
	rc receipt.Context,
	logger *log.Entry,
) *Server {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Server{
		catalog:   catalog,
		orders:    orders,
		intents:   intents,
		confirmer: confirmer,
		poller:    poller,
		rc:        rc,
		sessions:  newSessionStore(),
		logger:    logger,
	}
}

// EnableSimulator включает симулятор платёжного провайдера: каждый новый
// интент разрешается автоматически после задержки.
func (s *Server) EnableSimulator(sim *payment.Simulator) {
	s.simulator = sim
}

// Router собирает маршруты API.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api/v1")
	{
		api.GET("/restaurants/:restaurant_id/items/:item_id", s.getItem)
		api.POST("/restaurants/:restaurant_id/items/:item_id/validate", s.validateSelection)
		api.POST("/restaurants/:restaurant_id/items/:item_id/price", s.priceSelection)

		api.GET("/sessions/:session_id/cart", s.getCart)
		api.POST("/sessions/:session_id/cart/lines", s.addCartLine)
		api.PATCH("/sessions/:session_id/cart/lines/:line_id", s.updateCartLine)
		api.DELETE("/sessions/:session_id/cart/lines/:line_id", s.removeCartLine)
		api.DELETE("/sessions/:session_id/cart", s.clearCart)

		api.POST("/sessions/:session_id/checkout", s.checkoutCash)
		api.POST("/sessions/:session_id/payments", s.startCardPayment)
		api.GET("/sessions/:session_id/payments/:attempt_id", s.getPaymentStatus)
		api.DELETE("/sessions/:session_id/payments/:attempt_id", s.cancelPayment)

		// Callback платёжного провайдера: переводит интент в терминальный статус.
		api.POST("/payments/:intent_id/resolve", s.resolveIntent)

		api.GET("/orders/:order_id/receipt", s.getReceipt)
	}

	return engine
}

func (s *Server) errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForDomainError(err error) int {
	if domain.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
