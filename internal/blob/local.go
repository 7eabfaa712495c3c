package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore хранит блобы в каталоге на диске. Имя файла —
// временная метка плюс uuid: метка удобна глазами, uuid исключает
// коллизии при одновременных загрузках от разных пользователей.
type LocalStore struct {
	dir string
}

func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	ref := fmt.Sprintf("%s-%s.jpg", time.Now().UTC().Format("20060102T150405"), uuid.NewString())
	path := filepath.Join(s.dir, ref)

	// Пишем во временный файл и переименовываем: читатель никогда
	// не увидит недописанный блоб, при ошибке хвост убираем.
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Load(_ context.Context, ref string) ([]byte, error) {
	// ключ не должен выводить за пределы каталога
	if ref != filepath.Base(ref) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *LocalStore) PurgeOlderThan(_ context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
