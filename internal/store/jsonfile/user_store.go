package jsonfile

import (
	"path/filepath"
	"sync"
	"time"

	"ai-chat-studio/internal/model"
)

// userRecord persists the password hash, which the model deliberately
// excludes from its JSON form.
type userRecord struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"password_hash"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRecord(u *model.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		AvatarURL:    r.AvatarURL,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type UserStore struct {
	path string
	mu   sync.Mutex
}

func NewUserStore(dir string) (*UserStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &UserStore{path: filepath.Join(dir, "users.json")}, nil
}

func (s *UserStore) Create(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []userRecord
	if err := readJSON(s.path, &records); err != nil {
		return err
	}

	var maxID uint
	for _, r := range records {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	user.ID = maxID + 1
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	records = append(records, toRecord(user))
	return writeJSON(s.path, records)
}

func (s *UserStore) Update(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []userRecord
	if err := readJSON(s.path, &records); err != nil {
		return err
	}

	user.UpdatedAt = time.Now()
	for i, r := range records {
		if r.ID == user.ID {
			records[i] = toRecord(user)
			return writeJSON(s.path, records)
		}
	}
	return nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []userRecord
	if err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Username == username {
			return r.toModel(), nil
		}
	}
	return nil, nil
}

func (s *UserStore) GetByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []userRecord
	if err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == id {
			return r.toModel(), nil
		}
	}
	return nil, nil
}
