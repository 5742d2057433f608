package jsonfile

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"ai-chat-studio/internal/model"
)

type ConversationStore struct {
	dir string
	mu  sync.Mutex
}

func NewConversationStore(dir string) (*ConversationStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &ConversationStore{dir: dir}, nil
}

func (s *ConversationStore) userFile(username string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_conversations.json", username))
}

func (s *ConversationStore) Save(conv *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.userFile(conv.Username)
	var conversations []model.Conversation
	if err := readJSON(path, &conversations); err != nil {
		return err
	}

	for i := range conversations {
		if conversations[i].ID == conv.ID {
			conversations[i] = *conv
			return writeJSON(path, conversations)
		}
	}
	conversations = append(conversations, *conv)
	return writeJSON(path, conversations)
}

func (s *ConversationStore) Get(username, id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations []model.Conversation
	if err := readJSON(s.userFile(username), &conversations); err != nil {
		return nil, err
	}
	for i := range conversations {
		if conversations[i].ID == id {
			found := conversations[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (s *ConversationStore) LoadRecent(username string, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations []model.Conversation
	if err := readJSON(s.userFile(username), &conversations); err != nil {
		return nil, err
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastUpdated.After(conversations[j].LastUpdated)
	})
	if len(conversations) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

func (s *ConversationStore) MostRecentForModel(username, modelLabel string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations []model.Conversation
	if err := readJSON(s.userFile(username), &conversations); err != nil {
		return nil, err
	}

	var newest *model.Conversation
	for i := range conversations {
		if conversations[i].Model != modelLabel {
			continue
		}
		if newest == nil || conversations[i].LastUpdated.After(newest.LastUpdated) {
			newest = &conversations[i]
		}
	}
	if newest == nil {
		return nil, nil
	}
	found := *newest
	return &found, nil
}
