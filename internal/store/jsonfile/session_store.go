package jsonfile

import (
	"path/filepath"
	"sync"
	"time"

	"ai-chat-studio/internal/model"
)

// sessionRecord persists the raw token, which the model deliberately
// excludes from its JSON form.
type sessionRecord struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStore struct {
	path string
	mu   sync.Mutex
}

func NewSessionStore(dir string) (*SessionStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &SessionStore{path: filepath.Join(dir, "sessions.json")}, nil
}

func (s *SessionStore) Create(session *model.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []sessionRecord
	if err := readJSON(s.path, &records); err != nil {
		return err
	}

	var maxID uint
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	session.ID = maxID + 1

	records = append(records, sessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	return writeJSON(s.path, records)
}

func (s *SessionStore) GetByToken(token string) (*model.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []sessionRecord
	if err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Token == token {
			return &model.AuthSession{
				ID:        r.ID,
				UserID:    r.UserID,
				Token:     r.Token,
				CreatedAt: r.CreatedAt,
				ExpiresAt: r.ExpiresAt,
			}, nil
		}
	}
	return nil, nil
}

func (s *SessionStore) DeleteByToken(token string) error {
	return s.deleteWhere(func(r sessionRecord) bool { return r.Token == token })
}

func (s *SessionStore) DeleteByUserID(userID uint) error {
	return s.deleteWhere(func(r sessionRecord) bool { return r.UserID == userID })
}

func (s *SessionStore) deleteWhere(match func(sessionRecord) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []sessionRecord
	if err := readJSON(s.path, &records); err != nil {
		return err
	}
	kept := records[:0]
	for _, r := range records {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	return writeJSON(s.path, kept)
}
