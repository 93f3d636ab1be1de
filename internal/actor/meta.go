package actor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UserMeta contains per-user metadata persisted in meta.yaml next to the
// user's database file.
type UserMeta struct {
	// Created is when the user's store was first created.
	Created time.Time `yaml:"created"`
	// LastAccessed is when the user's actor last handled a request.
	LastAccessed time.Time `yaml:"last_accessed"`
}

// UserInfo summarizes one user's store for the admin surface.
type UserInfo struct {
	UserID       string    `json:"user_id"`
	Created      time.Time `json:"created"`
	LastAccessed time.Time `json:"last_accessed"`
	SizeBytes    int64     `json:"size_bytes"`
}

// NewUserMeta creates metadata for a newly provisioned user store.
func NewUserMeta() *UserMeta {
	now := time.Now().UTC()
	return &UserMeta{Created: now, LastAccessed: now}
}

// LoadUserMeta reads user metadata from a file path.
func LoadUserMeta(path string) (*UserMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta UserMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse user metadata: %w", err)
	}
	return &meta, nil
}

// SaveUserMeta writes user metadata to a file path.
func SaveUserMeta(path string, meta *UserMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal user metadata: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
