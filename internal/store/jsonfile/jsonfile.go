// Package jsonfile is the file-backed fallback storage used when no
// PostgreSQL connection string is configured. It satisfies the same store
// contracts as the gorm repositories. Conversations keep the legacy one
// file per user layout: data/<username>_conversations.json.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ai-chat-studio/internal/apperror"
)

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, "create data directory failed", err)
	}
	return nil
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperror.Wrap(apperror.KindStorageUnavailable, fmt.Sprintf("read %s failed", filepath.Base(path)), err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, fmt.Sprintf("parse %s failed", filepath.Base(path)), err)
	}
	return nil
}

// writeJSON writes via a temp file and rename so a crash mid-write never
// leaves a truncated store behind.
func writeJSON(path string, in any) error {
	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, fmt.Sprintf("encode %s failed", filepath.Base(path)), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, fmt.Sprintf("write %s failed", filepath.Base(path)), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, fmt.Sprintf("replace %s failed", filepath.Base(path)), err)
	}
	return nil
}
