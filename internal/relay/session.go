package relay

import (
	"sync"
	"time"
)

// Flow — высокоуровневый режим сессии.
type Flow int

const (
	FlowNone Flow = iota
	FlowBrowsing
	FlowApplying
)

// State — точное положение пользователя в навигации.
type State int

const (
	StateIdle State = iota
	StateRoleBrowsing
	StateRoleDetail
	StateApplySelect
	StateApplyDetail
	StateTestIssued
)

// Session holds everything the bot remembers about one user. The embedded
// mutex serializes screen renders and state changes for that user; handlers
// for different users never contend on it.
type Session struct {
	mu sync.Mutex

	Flow              Flow
	State             State
	Role              string
	Active            bool
	DeadlineStartedAt time.Time

	// Screen — единственное "живое" сообщение-меню пользователя.
	Screen *MessageRef
}

// sessions — процесс-широкое хранилище. Ключи ограничены числом реальных
// пользователей, записи не удаляются.
type sessions struct {
	mu sync.RWMutex
	m  map[int64]*Session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*Session)}
}

// get returns the session for userID, creating it on first interaction.
func (s *sessions) get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.m[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.m[userID]; ok {
		return sess
	}
	sess = &Session{}
	s.m[userID] = sess
	return sess
}
