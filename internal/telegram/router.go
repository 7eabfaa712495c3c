package telegram

import (
	"context"
	"fmt"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"waste-bot/internal/blob"
	"waste-bot/internal/classify"
	"waste-bot/internal/report"
	"waste-bot/internal/store"
	"waste-bot/internal/waste"
)

// Classifier — то, что умеет классифицировать байты фото.
type Classifier interface {
	Classify(ctx context.Context, data []byte) (classify.Result, error)
}

type Router struct {
	Bot        *tgbotapi.BotAPI
	Classifier Classifier
	Blobs      blob.Store
	Store      store.Store
	Log        *zap.SugaredLogger

	// Куда /report кладёт собранный файл перед отправкой.
	ReportsDir string
}

// HandleUpdate разбирает один апдейт. Каждый апдейт — независимая
// единица работы: ошибки внутри не валят процесс и не задевают
// соседние обработки.
func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	ctx := context.Background()

	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.handleCommand(ctx, upd.Message)
		return
	}
	if len(upd.Message.Photo) > 0 {
		r.handlePhoto(ctx, upd.Message)
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start":
		r.send(cid, welcomeText)
	case "stats":
		st, err := r.Store.Stats(ctx)
		if err != nil {
			r.Log.Errorw("stats read failed", "chat_id", cid, "err", err)
			r.send(cid, transientErrText)
			return
		}
		r.send(cid, statsText(st))
	case "report":
		r.sendReport(ctx, cid)
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "Неизвестная команда. Доступны: /start, /stats, /report")
	}
}

// sendReport пересобирает отчёт из текущего лога и отправляет документ в чат.
func (r *Router) sendReport(ctx context.Context, cid int64) {
	answers, err := r.Store.Answers(ctx)
	if err != nil {
		r.Log.Errorw("report: answers read failed", "err", err)
		r.send(cid, transientErrText)
		return
	}
	path := filepath.Join(r.ReportsDir, report.FileName)
	if err := report.Generate(ctx, answers, r.Blobs, path); err != nil {
		r.Log.Errorw("report: generation failed", "err", err)
		r.send(cid, transientErrText)
		return
	}
	doc := tgbotapi.NewDocument(cid, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Отчёт по классификации: %d записей", len(answers))
	if _, err := r.Bot.Send(doc); err != nil {
		r.Log.Errorw("report: send failed", "chat_id", cid, "err", err)
		r.send(cid, transientErrText)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warnw("send failed", "chat_id", chatID, "err", err)
	}
}

func statsText(st waste.Stats) string {
	return fmt.Sprintf("Верно: %d\nНеверно: %d\nТочность: %d%%",
		st.Correct, st.Incorrect, st.Accuracy())
}
