package httpapi

import (
	"sync"

	"github.com/vladislavdragonenkov/kiosk/internal/domain"
	"github.com/vladislavdragonenkov/kiosk/internal/service/payment"
)

// session — состояние одного клиентского сеанса терминала: текущая версия корзины
// и не более одной активной попытки оплаты.
type session struct {
	cart     domain.Cart
	attempts map[string]*payment.Attempt
	active   *payment.Attempt
}

// sessionStore хранит сеансы терминалов. Мутации корзины атомарны относительно
// чтений: под блокировкой подменяется целиком новая версия значения Cart.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{attempts: make(map[string]*payment.Attempt)}
		s.sessions[id] = sess
	}
	return sess
}

// Cart возвращает текущую версию корзины сеанса.
func (s *sessionStore) Cart(id string) domain.Cart {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Cart{}
	}
	return sess.cart
}

// UpdateCart применяет мутацию к корзине; возвращённая из fn версия становится текущей.
func (s *sessionStore) UpdateCart(id string, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	sess := s.get(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(sess.cart)
	if err != nil {
		return sess.cart, err
	}
	sess.cart = next
	return next, nil
}

// SetAttempt регистрирует новую попытку оплаты, снимая предыдущую активную:
// на сеанс опрашивается не более одного интента.
func (s *sessionStore) SetAttempt(id, attemptID string, attempt *payment.Attempt) {
	sess := s.get(id)

	s.mu.Lock()
	prev := sess.active
	sess.attempts[attemptID] = attempt
	sess.active = attempt
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// Attempt возвращает попытку оплаты по идентификатору.
func (s *sessionStore) Attempt(id, attemptID string) (*payment.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	attempt, ok := sess.attempts[attemptID]
	return attempt, ok
}
