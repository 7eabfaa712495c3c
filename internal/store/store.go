// Package store — долговечный лог ответов и счётчики отзывов.
// Два бэкенда: sqlite (по умолчанию) и postgres (database_url).
package store

import (
	"context"

	"waste-bot/internal/waste"
)

type Store interface {
	// AppendAnswer дописывает одну запись в лог. До возврата запись
	// долговечна; параллельные дописывания безопасны.
	AppendAnswer(ctx context.Context, a waste.Answer) error

	// Answers возвращает весь лог в порядке вставки.
	Answers(ctx context.Context) ([]waste.Answer, error)

	// Stats читает текущие счётчики.
	Stats(ctx context.Context) (waste.Stats, error)

	// IncrementStats атомарно прибавляет 1 к счётчику вердикта.
	IncrementStats(ctx context.Context, o waste.Outcome) error

	// ResolveAnswer помечает показ как разрешённый и в той же
	// транзакции инкрементирует счётчик. Если показ уже разрешён
	// (повторная доставка callback) — applied=false, счётчики не
	// трогаются.
	ResolveAnswer(ctx context.Context, chatID int64, messageID int, o waste.Outcome) (applied bool, err error)

	// Ping — проверка живости для healthz.
	Ping(ctx context.Context) error

	Close() error
}
