// Package session はプロセスローカルなログインセッション管理を提供する。
// セッションは永続化されず、サーバーインスタンス間でも共有されない。
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store はインメモリのセッションストア。
// バックグラウンドで期限切れセッションを定期的にクリーンアップする。
type Store struct {
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStore はStoreを生成し、クリーンアップのバックグラウンドゴルーチンを開始する。
// maxAgeはセッションの有効期間。
func NewStore(maxAge time.Duration) *Store {
	s := &Store{
		maxAge:          maxAge,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		sessions:        make(map[string]*Session),
		stopCh:          make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Create は指定ユーザーの新しいセッションを発行する。
func (s *Store) Create(userID string) *Session {
	now := s.now()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(s.maxAge),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Find は指定IDのセッションを返す。存在しない、または期限切れの場合はnilを返す。
func (s *Store) Find(id string) *Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	if s.now().After(session.ExpiresAt) {
		s.Delete(id)
		return nil
	}
	return session
}

// Delete は指定IDのセッションを破棄する。存在しない場合は何もしない。
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// DeleteByUserID は指定ユーザーの全セッションを破棄する。
func (s *Store) DeleteByUserID(userID string) {
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}

// Count は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupLoop はバックグラウンドで期限切れセッションを定期的に削除する。
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup は期限切れセッションを削除する。
func (s *Store) cleanup() {
	now := s.now()

	s.mu.Lock()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}
