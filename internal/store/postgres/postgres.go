// Бэкенд на Postgres (pgx через database/sql) для развёртываний,
// где несколько экземпляров делят одну базу: инкременты сериализует
// сама СУБД.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"waste-bot/internal/waste"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	schema := `
	CREATE TABLE IF NOT EXISTS answers (
		id              BIGSERIAL PRIMARY KEY,
		blob_ref        TEXT NOT NULL,
		predicted_class TEXT NOT NULL,
		confidence      INT NOT NULL,
		chat_id         BIGINT NOT NULL,
		message_id      INT NOT NULL,
		resolved        BOOLEAN NOT NULL DEFAULT FALSE,
		verdict         TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_answers_presentation ON answers(chat_id, message_id);

	CREATE TABLE IF NOT EXISTS stats (
		id        INT PRIMARY KEY CHECK (id = 1),
		correct   BIGINT NOT NULL DEFAULT 0,
		incorrect BIGINT NOT NULL DEFAULT 0
	);
	INSERT INTO stats (id, correct, incorrect) VALUES (1, 0, 0) ON CONFLICT (id) DO NOTHING;
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
		 VALUES ($1, $2, $3, $4, $5, $6)`,
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
			a       waste.Answer
			verdict string
		)
		if err := rows.Scan(&a.ID, &a.BlobRef, &a.PredictedClass, &a.Confidence,
			&a.ChatID, &a.MessageID, &a.Resolved, &verdict, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan answer: %v", waste.ErrStore, err)
		}
		a.Verdict = waste.Outcome(verdict)
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
	if _, err := s.db.ExecContext(ctx, incrementSQL(o)); err != nil {
		return fmt.Errorf("%w: increment: %v", waste.ErrStore, err)
	}
	return nil
}

func (s *Store) ResolveAnswer(ctx context.Context, chatID int64, messageID int, o waste.Outcome) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: resolve: %v", waste.ErrStore, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE answers SET resolved = TRUE, verdict = $1
		 WHERE chat_id = $2 AND message_id = $3 AND resolved = FALSE`,
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
