package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/stash/internal/store"
)

// ErrUserNotFound indicates the requested user store does not exist.
var ErrUserNotFound = errors.New("user not found")

const (
	dbFileName   = "stash.db"
	metaFileName = "meta.yaml"
)

// Manager binds each user to exactly one Actor, provisioning stores lazily
// under a root directory. The actor serializes all work against its store;
// the manager only guards its own actor map.
type Manager struct {
	rootPath string

	mu     sync.RWMutex
	actors map[string]*managedActor
}

type managedActor struct {
	actor *Actor
	path  string

	mu   sync.Mutex
	meta *UserMeta
}

// touch updates the last-accessed timestamp.
func (ma *managedActor) touch() {
	ma.mu.Lock()
	ma.meta.LastAccessed = time.Now().UTC()
	ma.mu.Unlock()
}

// flushMeta persists the metadata sidecar.
func (ma *managedActor) flushMeta() error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	return SaveUserMeta(filepath.Join(ma.path, metaFileName), ma.meta)
}

// NewManager creates a manager with the given root path, creating the
// directory if needed.
func NewManager(rootPath string) (*Manager, error) {
	if strings.HasPrefix(rootPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		rootPath = filepath.Join(home, rootPath[2:])
	}

	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("create users root directory: %w", err)
	}

	return &Manager{
		rootPath: rootPath,
		actors:   make(map[string]*managedActor),
	}, nil
}

// Actor returns the actor for the given user, instantiating it if necessary.
// Identity is resolved upstream, so any valid user ID provisions a store on
// first use.
func (m *Manager) Actor(ctx context.Context, userID string) (*Actor, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if managed, ok := m.actors[userID]; ok {
		m.mu.RUnlock()
		managed.touch()
		return managed.actor, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if managed, ok := m.actors[userID]; ok {
		managed.touch()
		return managed.actor, nil
	}

	userPath := m.userPath(userID)
	metaPath := filepath.Join(userPath, metaFileName)

	meta, err := LoadUserMeta(metaPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load user metadata: %w", err)
		}
		if err := os.MkdirAll(userPath, 0755); err != nil {
			return nil, fmt.Errorf("create user directory: %w", err)
		}
		meta = NewUserMeta()
		if err := SaveUserMeta(metaPath, meta); err != nil {
			return nil, fmt.Errorf("write user metadata: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(filepath.Join(userPath, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open store for user %q: %w", userID, err)
	}

	managed := &managedActor{
		actor: newActor(userID, s),
		meta:  meta,
		path:  userPath,
	}
	m.actors[userID] = managed

	slog.Info("actor loaded",
		"component", "actor",
		"action", "actor_loaded",
		"user_id", userID,
		"migrations_applied", len(s.AppliedMigrations()),
	)

	managed.touch()
	return managed.actor, nil
}

// ActiveActors reports how many actors are currently loaded.
func (m *Manager) ActiveActors() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.actors)
}

// ListUsers returns summary information for every provisioned user store.
func (m *Manager) ListUsers(ctx context.Context) ([]UserInfo, error) {
	entries, err := os.ReadDir(m.rootPath)
	if err != nil {
		return nil, fmt.Errorf("read users directory: %w", err)
	}

	var users []UserInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		userPath := filepath.Join(m.rootPath, entry.Name())
		meta, err := LoadUserMeta(filepath.Join(userPath, metaFileName))
		if err != nil {
			slog.Warn("skipping directory without user metadata",
				"path", userPath, "error", err)
			continue
		}

		var sizeBytes int64
		if info, err := os.Stat(filepath.Join(userPath, dbFileName)); err == nil {
			sizeBytes = info.Size()
		}

		users = append(users, UserInfo{
			UserID:       entry.Name(),
			Created:      meta.Created,
			LastAccessed: meta.LastAccessed,
			SizeBytes:    sizeBytes,
		})
	}

	return users, nil
}

// GetUserInfo returns summary information for one user store.
func (m *Manager) GetUserInfo(ctx context.Context, userID string) (UserInfo, error) {
	if err := ValidateUserID(userID); err != nil {
		return UserInfo{}, err
	}

	userPath := m.userPath(userID)
	meta, err := LoadUserMeta(filepath.Join(userPath, metaFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return UserInfo{}, ErrUserNotFound
		}
		return UserInfo{}, fmt.Errorf("load user metadata: %w", err)
	}

	var sizeBytes int64
	if info, err := os.Stat(filepath.Join(userPath, dbFileName)); err == nil {
		sizeBytes = info.Size()
	}

	return UserInfo{
		UserID:       userID,
		Created:      meta.Created,
		LastAccessed: meta.LastAccessed,
		SizeBytes:    sizeBytes,
	}, nil
}

// DeleteUser removes a user's store from disk entirely. This is the
// filesystem-level admin operation; the in-protocol cleanup handler erases
// table contents but keeps the store.
func (m *Manager) DeleteUser(ctx context.Context, userID string) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userPath := m.userPath(userID)
	if _, err := os.Stat(userPath); os.IsNotExist(err) {
		return ErrUserNotFound
	}

	if managed, ok := m.actors[userID]; ok {
		if err := managed.actor.close(); err != nil {
			slog.Warn("error closing actor before deletion",
				"user_id", userID, "error", err)
		}
		delete(m.actors, userID)
	}

	if err := os.RemoveAll(userPath); err != nil {
		return fmt.Errorf("remove user directory: %w", err)
	}

	slog.Info("user store deleted",
		"component", "actor",
		"action", "user_deleted",
		"user_id", userID,
	)
	return nil
}

// Close shuts down all loaded actors and flushes their metadata.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for userID, managed := range m.actors {
		if err := managed.flushMeta(); err != nil {
			slog.Warn("failed to flush user metadata", "user_id", userID, "error", err)
		}
		if err := managed.actor.close(); err != nil {
			slog.Error("error closing actor", "user_id", userID, "error", err)
			lastErr = err
		}
	}
	m.actors = make(map[string]*managedActor)

	return lastErr
}

func (m *Manager) userPath(userID string) string {
	return filepath.Join(m.rootPath, userID)
}
