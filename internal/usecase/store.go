package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"advisor-chat/internal/domain"
)

// MessageStore is the append-only, in-memory message log of one session.
type MessageStore struct {
	mu       sync.RWMutex
	messages []domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// Append creates a message and adds it to the end of the log.
func (s *MessageStore) Append(role domain.Role, content string) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := domain.Message{
		ID:        newMessageID(),
		Seq:       len(s.messages) + 1,
		Role:      role,
		Content:   content,
		CreatedAt: now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// All returns a copy of the log in display order.
func (s *MessageStore) All() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message.
func (s *MessageStore) Last() (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.messages) == 0 {
		return domain.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// newMessageID returns a time-ordered UUIDv7 so IDs sort like the log.
var newMessageID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

var now = time.Now
