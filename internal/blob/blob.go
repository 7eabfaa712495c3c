// Package blob — хранилище байтов фотографий под непрозрачными ключами.
// Генератор отчёта читает блобы по ключу из лога ответов, поэтому после
// классификации файлы не удаляются; чистка — отдельная политика retention.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound — блоба с таким ключом нет (не фатально для отчёта).
var ErrNotFound = errors.New("blob not found")

// ErrEmptyPayload — попытка сохранить пустой блоб.
var ErrEmptyPayload = errors.New("empty payload")

type Store interface {
	// Save кладёт байты под свежим ключом. При ошибке частичный
	// файл не остаётся.
	Save(ctx context.Context, data []byte) (ref string, err error)
	// Load читает блоб по ключу; отсутствие — ErrNotFound.
	Load(ctx context.Context, ref string) ([]byte, error)
	// PurgeOlderThan удаляет блобы старше заданного возраста,
	// возвращает число удалённых.
	PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int, error)
}
