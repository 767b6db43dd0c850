package params

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// FileBackend keeps every key in one JSON object on disk. Each write rewrites
// the document through a temporary file and rename so a crash never leaves a
// partially written file behind.
type FileBackend struct {
	mu   sync.Mutex
	path string
	doc  string
}

// OpenFile loads path, creating an empty document when it does not exist.
func OpenFile(path string) (*FileBackend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("params: file path is required")
	}
	b := &FileBackend{path: path, doc: "{}"}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("params: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return b, nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("params: %s is not a JSON object", path)
	}
	b.doc = string(data)
	return b, nil
}

// Path returns the backing file location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	result := gjson.Get(b.doc, escapePath(key))
	if !result.Exists() {
		return "", false, nil
	}
	return result.String(), true, nil
}

func (b *FileBackend) Put(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	doc, err := sjson.Set(b.doc, escapePath(key), value)
	if err != nil {
		return fmt.Errorf("params: set %q: %w", key, err)
	}
	return b.commit(doc)
}

func (b *FileBackend) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !gjson.Get(b.doc, escapePath(key)).Exists() {
		return nil
	}
	doc, err := sjson.Delete(b.doc, escapePath(key))
	if err != nil {
		return fmt.Errorf("params: delete %q: %w", key, err)
	}
	return b.commit(doc)
}

func (b *FileBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	gjson.Parse(b.doc).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (b *FileBackend) commit(doc string) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("params: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".params-*")
	if err != nil {
		return fmt.Errorf("params: temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(pretty.Pretty([]byte(doc))); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("params: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("params: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("params: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		cleanup()
		return fmt.Errorf("params: rename %s: %w", b.path, err)
	}
	b.doc = doc
	return nil
}

// escapePath makes key a literal gjson/sjson path component.
func escapePath(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
