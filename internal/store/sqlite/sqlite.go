// Бэкенд на sqlite: один файл рядом с ботом, переживает рестарт.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"waste-bot/internal/waste"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	// busy_timeout + txlock=immediate: параллельные обработчики
	// выстраиваются в очередь на блокировке файла, а не падают
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS answers (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		blob_ref        TEXT NOT NULL,
		predicted_class TEXT NOT NULL,
		confidence      INTEGER NOT NULL,
		chat_id         INTEGER NOT NULL,
		message_id      INTEGER NOT NULL,
		resolved        INTEGER NOT NULL DEFAULT 0,
		verdict         TEXT NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_answers_presentation ON answers(chat_id, message_id);
	CREATE INDEX IF NOT EXISTS idx_answers_created_at ON answers(created_at);

	CREATE TABLE IF NOT EXISTS stats (
		id        INTEGER PRIMARY KEY CHECK (id = 1),
		correct   INTEGER NOT NULL DEFAULT 0,
		incorrect INTEGER NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO stats (id, correct, incorrect) VALUES (1, 0, 0);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) AppendAnswer(ctx context.Context, a waste.Answer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (blob_ref, predicted_class, confidence, chat_id, message_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.BlobRef, a.PredictedClass, a.Confidence, a.ChatID, a.MessageID, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: append answer: %v", waste.ErrStore, err)
	}
	return nil
}

func (s *Store) Answers(ctx context.Context) ([]waste.Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, blob_ref, predicted_class, confidence, chat_id, message_id, resolved, verdict, created_at
		 FROM answers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: read answers: %v", waste.ErrStore, err)
	}
	defer rows.Close()

	var out []waste.Answer
	for rows.Next() {
		var (
			a        waste.Answer
			resolved int
			verdict  string
			ts       time.Time
		)
		if err := rows.Scan(&a.ID, &a.BlobRef, &a.PredictedClass, &a.Confidence,
			&a.ChatID, &a.MessageID, &resolved, &verdict, &ts); err != nil {
			return nil, fmt.Errorf("%w: scan answer: %v", waste.ErrStore, err)
		}
		a.Resolved = resolved != 0
		a.Verdict = waste.Outcome(verdict)
		a.CreatedAt = ts
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read answers: %v", waste.ErrStore, err)
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context) (waste.Stats, error) {
	var st waste.Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT correct, incorrect FROM stats WHERE id = 1`).Scan(&st.Correct, &st.Incorrect)
	if err != nil {
		return waste.Stats{}, fmt.Errorf("%w: read stats: %v", waste.ErrStore, err)
	}
	return st, nil
}

func (s *Store) IncrementStats(ctx context.Context, o waste.Outcome) error {
	_, err := s.db.ExecContext(ctx, incrementSQL(o))
	if err != nil {
		return fmt.Errorf("%w: increment: %v", waste.ErrStore, err)
	}
	return nil
}

// ResolveAnswer: UPDATE с условием resolved=0 — явный маркер
// «уже разрешено»; повторный callback даёт 0 затронутых строк, и
// инкремент не применяется второй раз.
func (s *Store) ResolveAnswer(ctx context.Context, chatID int64, messageID int, o waste.Outcome) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: resolve: %v", waste.ErrStore, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE answers SET resolved = 1, verdict = ?
		 WHERE chat_id = ? AND message_id = ? AND resolved = 0`,
		string(o), chatID, messageID)
	if err != nil {
		return false, fmt.Errorf("%w: resolve: %v", waste.ErrStore, err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, incrementSQL(o)); err != nil {
		return false, fmt.Errorf("%w: increment: %v", waste.ErrStore, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: resolve commit: %v", waste.ErrStore, err)
	}
	return true, nil
}

func incrementSQL(o waste.Outcome) string {
	if o == waste.OutcomeCorrect {
		return `UPDATE stats SET correct = correct + 1 WHERE id = 1`
	}
	return `UPDATE stats SET incorrect = incorrect + 1 WHERE id = 1`
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
