package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
)

const subscriberBuffer = 16

type MemoryStores struct {
	mu       sync.Mutex
	sessions map[string]*MemoryStore
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{sessions: map[string]*MemoryStore{}}
}

func (m *MemoryStores) ForSession(session string) Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[session]
	if !ok {
		s = NewMemoryStore(session)
		m.sessions[session] = s
	}
	return s
}

type MemoryStore struct {
	mu          sync.RWMutex
	session     string
	items       []request.CartItem
	token       string
	nextID      int
	subscribers map[int]chan Event
}

func NewMemoryStore(session string) *MemoryStore {
	return &MemoryStore{
		session:     session,
		items:       []request.CartItem{},
		subscribers: map[int]chan Event{},
	}
}

func (s *MemoryStore) Items(c context.Context) ([]request.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

func (s *MemoryStore) AccessToken(c context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", fmt.Errorf("failed getting access token session=%s with error=%w", s.session, commonErrors.ErrEmptyAccessToken)
	}
	return s.token, nil
}

func (s *MemoryStore) Subscribe(c context.Context) (<-chan Event, func(), error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	ch := make(chan Event, subscriberBuffer)
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	stop := context.AfterFunc(c, unsubscribe)
	return ch, func() {
		stop()
		unsubscribe()
	}, nil
}

func (s *MemoryStore) Dispatch(c context.Context, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action.Type == ActionSetAccessToken {
		s.token = action.Token
	} else {
		items, err := Reduce(s.items, action)
		if err != nil {
			return err
		}
		s.items = items
	}

	event := Event{Session: s.session, Action: action.Type}
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}
