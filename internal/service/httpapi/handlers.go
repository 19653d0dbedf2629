package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/checkout"
	"github.com/vladislavdragonenkov/kiosk/internal/service/pricing"
	"github.com/vladislavdragonenkov/kiosk/internal/service/receipt"
	"github.com/vladislavdragonenkov/kiosk/internal/service/validate"
)

// getItem возвращает позицию меню с вложенными группами опций и добавок.
func (s *Server) getItem(c *gin.Context) {
	item, err := s.catalog.Item(c.Request.Context(), c.Param("restaurant_id"), c.Param("item_id"))
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}
	c.JSON(http.StatusOK, toItemDTO(&item))
}

type validateRequest struct {
	Selection selectionDTO `json:"selection"`
}

type validateResponse struct {
	Satisfied                bool     `json:"satisfied"`
	UnsatisfiedOptionGroups  []string `json:"unsatisfied_option_groups"`
	UnsatisfiedToppingGroups []string `json:"unsatisfied_topping_groups"`
	FirstUnsatisfied         string   `json:"first_unsatisfied,omitempty"`
}

// validateSelection проверяет выбор против правил кардинальности позиции.
// Структурно неверный выбор (ссылки на неизвестные группы) — это 400,
// неудовлетворённые правила — нормальный ответ с satisfied=false.
func (s *Server) validateSelection(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.catalog.Item(c.Request.Context(), c.Param("restaurant_id"), c.Param("item_id"))
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}

	sel := req.Selection.toDomain()
	if errs := sel.Validate(&item); len(errs) > 0 {
		s.errorJSON(c, http.StatusBadRequest, errs[0])
		return
	}

	res := validate.Check(&item, sel)
	resp := validateResponse{
		Satisfied:                res.Satisfied,
		UnsatisfiedOptionGroups:  res.UnsatisfiedOptionGroups,
		UnsatisfiedToppingGroups: res.UnsatisfiedToppingGroups,
	}
	if first, ok := validate.FirstUnsatisfied(&item, sel); ok {
		resp.FirstUnsatisfied = first
	}
	c.JSON(http.StatusOK, resp)
}

type priceResponse struct {
	UnitPrice            string   `json:"unit_price"`
	VisibleToppingGroups []string `json:"visible_topping_groups"`
}

// priceSelection считает цену за единицу для текущего выбора без добавления в корзину.
func (s *Server) priceSelection(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	item, err := s.catalog.Item(c.Request.Context(), c.Param("restaurant_id"), c.Param("item_id"))
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}

	sel := req.Selection.toDomain()
	if errs := sel.Validate(&item); len(errs) > 0 {
		s.errorJSON(c, http.StatusBadRequest, errs[0])
		return
	}

	visible := validate.VisibleToppingGroups(&item, sel)
	visibleIDs := make([]string, 0, len(visible))
	for _, group := range visible {
		visibleIDs = append(visibleIDs, group.ID)
	}

	c.JSON(http.StatusOK, priceResponse{
		UnitPrice:            pricing.UnitPrice(&item, sel).StringFixed(2),
		VisibleToppingGroups: visibleIDs,
	})
}

// getCart возвращает текущую версию корзины сеанса с итогами.
func (s *Server) getCart(c *gin.Context) {
	cart := s.sessions.Cart(c.Param("session_id"))
	c.JSON(http.StatusOK, toCartDTO(cart, s.rc.DefaultTaxRate))
}

type addLineRequest struct {
	RestaurantID string       `json:"restaurant_id"`
	ItemID       string       `json:"item_id"`
	Selection    selectionDTO `json:"selection"`
	Quantity     int          `json:"quantity"`
	Instructions string       `json:"instructions"`
}

// addCartLine замораживает позицию, выбор и цену в новой строке корзины.
// Неудовлетворённый выбор в корзину не попадает.
func (s *Server) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := s.catalog.Item(c.Request.Context(), req.RestaurantID, req.ItemID)
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}

	sel := req.Selection.toDomain()
	if errs := sel.Validate(&item); len(errs) > 0 {
		s.errorJSON(c, http.StatusBadRequest, errs[0])
		return
	}
	if res := validate.Check(&item, sel); !res.Satisfied {
		first, _ := validate.FirstUnsatisfied(&item, sel)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "selection does not satisfy item rules",
			"first_unsatisfied": first,
		})
		return
	}

	line := domain.CartLine{
		ID:           uuid.NewString(),
		Item:         item,
		Selection:    sel.Clone(),
		Quantity:     req.Quantity,
		Instructions: req.Instructions,
		UnitPrice:    pricing.UnitPrice(&item, sel),
		AddedAt:      time.Now().UTC(),
	}

	cart, err := s.sessions.UpdateCart(c.Param("session_id"), func(cur domain.Cart) (domain.Cart, error) {
		return cur.WithLine(line), nil
	})
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}
	c.JSON(http.StatusCreated, toCartDTO(cart, s.rc.DefaultTaxRate))
}

type updateLineRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartLine меняет количество строки; нулевое количество удаляет строку.
func (s *Server) updateCartLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	cart, err := s.sessions.UpdateCart(c.Param("session_id"), func(cur domain.Cart) (domain.Cart, error) {
		return cur.WithQuantity(c.Param("line_id"), req.Quantity)
	})
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}
	c.JSON(http.StatusOK, toCartDTO(cart, s.rc.DefaultTaxRate))
}

func (s *Server) removeCartLine(c *gin.Context) {
	cart, err := s.sessions.UpdateCart(c.Param("session_id"), func(cur domain.Cart) (domain.Cart, error) {
		return cur.WithoutLine(c.Param("line_id"))
	})
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}
	c.JSON(http.StatusOK, toCartDTO(cart, s.rc.DefaultTaxRate))
}

func (s *Server) clearCart(c *gin.Context) {
	cart, err := s.sessions.UpdateCart(c.Param("session_id"), func(cur domain.Cart) (domain.Cart, error) {
		return cur.Cleared(), nil
	})
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}
	c.JSON(http.StatusOK, toCartDTO(cart, s.rc.DefaultTaxRate))
}

type checkoutRequest struct {
	RestaurantID string `json:"restaurant_id"`
	Type         string `json:"type"`
	TableID      string `json:"table_id"`
}

// checkoutCash подтверждает заказ с оплатой на кассе: синхронно, без интента.
func (s *Server) checkoutCash(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	sessionID := c.Param("session_id")
	cart := s.sessions.Cart(sessionID)

	order, err := s.confirmer.Confirm(c.Request.Context(), checkout.Request{
		RestaurantID: req.RestaurantID,
		Cart:         cart,
		Type:         domain.OrderType(req.Type),
		TableID:      req.TableID,
		Method:       domain.PaymentMethodCash,
	})
	if err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	s.clearSession(sessionID)
	c.JSON(http.StatusCreated, toOrderDTO(order))
}

type startPaymentResponse struct {
	AttemptID string `json:"attempt_id"`
	IntentID  string `json:"intent_id"`
	State     string `json:"state"`
}

// startCardPayment создаёт платёжный интент и запускает опрос его статуса.
// Снимок корзины замораживается на момент старта: правки корзины во время
// опроса не меняют подтверждаемый заказ. Новая попытка снимает предыдущую.
func (s *Server) startCardPayment(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	sessionID := c.Param("session_id")
	cart := s.sessions.Cart(sessionID)
	if cart.Empty() {
		s.errorJSON(c, http.StatusBadRequest, domain.ErrCartEmpty)
		return
	}

	// Заказ проверяется до создания интента, чтобы не плодить интенты
	// под заведомо некорректные заказы.
	probe := domain.Order{
		ID:           uuid.NewString(),
		RestaurantID: req.RestaurantID,
		Number:       1,
		Type:         domain.OrderType(req.Type),
		TableID:      req.TableID,
		Method:       domain.PaymentMethodCard,
		Lines:        cart.Lines,
	}
	if errs := probe.Validate(s.confirmer.TableSelectionEnabled()); len(errs) > 0 {
		s.errorJSON(c, http.StatusBadRequest, errs[0])
		return
	}

	totals := pricing.CartTotals(cart, s.rc.DefaultTaxRate)
	confirmReq := checkout.Request{
		RestaurantID: req.RestaurantID,
		Cart:         cart,
		Type:         domain.OrderType(req.Type),
		TableID:      req.TableID,
		Method:       domain.PaymentMethodCard,
	}

	attempt, err := s.poller.Start(c.Request.Context(), totals.Total, func(ctx context.Context) error {
		_, err := s.confirmer.Confirm(ctx, confirmReq)
		if err == nil {
			s.clearSession(sessionID)
		}
		return err
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to start payment attempt")
		s.errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	s.sessions.SetAttempt(sessionID, attempt.IntentID, attempt)
	if s.simulator != nil {
		s.simulator.Resolve(context.WithoutCancel(c.Request.Context()), attempt.IntentID)
	}
	state, _ := attempt.State()
	c.JSON(http.StatusAccepted, startPaymentResponse{
		AttemptID: attempt.IntentID,
		IntentID:  attempt.IntentID,
		State:     string(state),
	})
}

type paymentStatusResponse struct {
	AttemptID string `json:"attempt_id"`
	State     string `json:"state"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) getPaymentStatus(c *gin.Context) {
	attempt, ok := s.sessions.Attempt(c.Param("session_id"), c.Param("attempt_id"))
	if !ok {
		s.errorJSON(c, http.StatusNotFound, domain.ErrIntentNotFound)
		return
	}
	state, message := attempt.State()
	c.JSON(http.StatusOK, paymentStatusResponse{
		AttemptID: attempt.IntentID,
		State:     string(state),
		Message:   message,
	})
}

// cancelPayment снимает попытку: закрытие диалога оплаты на терминале.
// Уже одобренную попытку отмена не трогает.
func (s *Server) cancelPayment(c *gin.Context) {
	attempt, ok := s.sessions.Attempt(c.Param("session_id"), c.Param("attempt_id"))
	if !ok {
		s.errorJSON(c, http.StatusNotFound, domain.ErrIntentNotFound)
		return
	}
	attempt.Cancel()
	state, message := attempt.State()
	c.JSON(http.StatusOK, paymentStatusResponse{
		AttemptID: attempt.IntentID,
		State:     string(state),
		Message:   message,
	})
}

type resolveIntentRequest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// resolveIntent — callback платёжного провайдера: переводит интент в
// терминальный статус. Повторный перевод терминального интента — конфликт.
func (s *Server) resolveIntent(c *gin.Context) {
	var req resolveIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, err)
		return
	}

	status := domain.PaymentIntentStatus(req.Status)
	if status != domain.PaymentIntentApproved && status != domain.PaymentIntentDeclined {
		s.errorJSON(c, http.StatusBadRequest, domain.ErrIntentStatusInvalid)
		return
	}

	err := s.intents.UpdateIntent(c.Request.Context(), c.Param("intent_id"), status, req.Message)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrIntentResolved):
		s.errorJSON(c, http.StatusConflict, err)
	default:
		s.errorJSON(c, statusForDomainError(err), err)
	}
}

type receiptResponse struct {
	Document     *receipt.Document `json:"document"`
	PrintPayload string            `json:"print_payload"`
}

// getReceipt возвращает чек подтверждённого заказа: структурную форму для
// экрана и закодированный командный поток для термопринтера.
func (s *Server) getReceipt(c *gin.Context) {
	order, err := s.orders.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		s.errorJSON(c, statusForDomainError(err), err)
		return
	}

	doc := receipt.Build(&order, s.rc)
	cmds := doc.Commands(s.rc)
	c.JSON(http.StatusOK, receiptResponse{
		Document:     doc,
		PrintPayload: receipt.Encode(cmds),
	})
}

func (s *Server) clearSession(sessionID string) {
	if _, err := s.sessions.UpdateCart(sessionID, func(cur domain.Cart) (domain.Cart, error) {
		return cur.Cleared(), nil
	}); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("failed to clear session cart")
	}
}
