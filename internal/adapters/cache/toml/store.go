package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"tutorwatch/internal/domain"
	"tutorwatch/internal/ports"
)

const (
	cacheFileMode   = 0o600
	cacheDirMode    = 0o700
	tempFilePattern = ".credentials-*.toml.tmp"
)

// Store persists session credentials as a single TOML document with
// whole-document read-modify-write under one critical section. A missing or
// corrupt document is an empty cache; expiry is evaluated lazily on Get.
type Store struct {
	path  string
	mu    *sync.RWMutex
	clock ports.Clock
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.CredentialCache = (*Store)(nil)

func NewStore(path string, clock ports.Clock) (*Store, error) {
	if path == "" {
		return nil, errors.New("credential cache path is empty")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve credential cache path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath), clock: clock}, nil
}

func (s *Store) Get(ctx context.Context, service domain.ServiceKey) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file := s.readSchema()
	entry, ok := file.Services[string(service)]
	if !ok {
		return "", false, nil
	}

	credential, ok := entry.toCredential(service)
	if !ok || credential.Expired(s.clock.Now()) {
		return "", false, nil
	}

	return credential.Token, true, nil
}

func (s *Store) Put(ctx context.Context, service domain.ServiceKey, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.readSchema()
	if file.Services == nil {
		file.Services = map[string]entrySchema{}
	}
	file.Services[string(service)] = entrySchema{
		Token:      token,
		AcquiredAt: s.clock.Now().Format(time.RFC3339),
	}

	return s.writeSchema(file)
}

func (s *Store) Clear(ctx context.Context, service domain.ServiceKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.readSchema()
	if _, ok := file.Services[string(service)]; !ok {
		return nil
	}
	delete(file.Services, string(service))

	return s.writeSchema(file)
}

func (s *Store) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential cache: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file := s.readSchema()
	credentials := make([]domain.Credential, 0, len(file.Services))
	for service, entry := range file.Services {
		credential, ok := entry.toCredential(domain.ServiceKey(service))
		if !ok {
			continue
		}
		credentials = append(credentials, credential)
	}

	sort.Slice(credentials, func(i, j int) bool {
		return credentials[i].Service < credentials[j].Service
	})

	return credentials, nil
}

// readSchema fails open: any read or decode problem yields an empty document
// so that a corrupt cache degrades to re-authentication, never an error.
func (s *Store) readSchema() fileSchema {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fileSchema{}
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}
	}

	return file
}

func (s *Store) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(s.path), cacheDirMode); err != nil {
		return fmt.Errorf("create credential cache directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode credential cache: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp credential cache: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp credential cache: %w", err)
	}

	if err := tempFile.Chmod(cacheFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp credential cache: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp credential cache: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace credential cache: %w", err)
	}

	cleanup = false

	if err := os.Chmod(s.path, cacheFileMode); err != nil {
		return fmt.Errorf("chmod credential cache: %w", err)
	}

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
