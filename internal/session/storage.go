package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Chaves persistidas. Ambas existem ou nenhuma existe.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNotFound indica chave ausente no armazenamento.
var ErrNotFound = errors.New("sessão: chave não encontrada")

// ErrCorrupt indica arquivo de sessão ilegível. Set e Delete o sobrescrevem.
var ErrCorrupt = errors.New("sessão: arquivo corrompido")

// Storage é o armazenamento durável chave-valor da sessão.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// DefaultFilePath devolve o caminho do arquivo de sessão.
// REPO_SESSION_FILE tem precedência; depois $XDG_CONFIG_HOME/repoctl/session.json.
func DefaultFilePath() string {
	if envPath := os.Getenv("REPO_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "repoctl-session.json")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "repoctl", "session.json")
}

// FileStorage guarda as chaves num arquivo JSON legível só pelo dono.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage cria o armazenamento no caminho informado.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path devolve o arquivo em uso.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *FileStorage) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		values, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if errors.Is(err, ErrCorrupt) {
		return f.remove()
	}
	if err != nil {
		return err
	}
	changed := false
	for _, key := range keys {
		if _, ok := values[key]; ok {
			delete(values, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(values) == 0 {
		return f.remove()
	}
	return f.write(values)
}

func (f *FileStorage) remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removendo sessão %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStorage) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("lendo sessão %s: %w", f.path, err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("criando diretório %s: %w", dir, err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("gravando sessão %s: %w", f.path, err)
	}
	return nil
}
