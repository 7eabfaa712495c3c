package waste

import (
	"math"
	"time"
)

// Outcome — вердикт пользователя по показанному результату.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Answer — одна показанная пользователю классификация. Запись создаётся
// атомарно после отправки сообщения и дальше не изменяется (кроме флага
// Resolved, который ставит обработчик отзыва).
type Answer struct {
	ID             int64
	BlobRef        string // ключ картинки в blob-хранилище
	PredictedClass string
	Confidence     int // проценты [0,100]
	ChatID         int64
	MessageID      int // presentation id: chat_id + message_id
	Resolved       bool
	Verdict        Outcome // пусто, пока отзыв не получен
	CreatedAt      time.Time
}

// Stats — накопленные счётчики отзывов.
type Stats struct {
	Correct   int64 `json:"correct"`
	Incorrect int64 `json:"incorrect"`
}

// Accuracy возвращает точность в целых процентах; 0, если отзывов ещё нет.
func (s Stats) Accuracy() int {
	total := s.Correct + s.Incorrect
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Correct) / float64(total) * 100))
}
