package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"waste-bot/internal/waste"
)

// handlePhoto гонит одно фото через весь конвейер:
// скачать → сохранить блоб → классифицировать → показать → записать.
// Любая ошибка до показа превращается в одно извинение пользователю.
func (r *Router) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	if err := r.processPhoto(ctx, msg); err != nil {
		switch {
		case errors.Is(err, waste.ErrAcquisition):
			r.Log.Errorw("photo acquisition failed", "chat_id", cid, "err", err)
		case errors.Is(err, waste.ErrClassification):
			r.Log.Errorw("classification failed", "chat_id", cid, "err", err)
		default:
			r.Log.Errorw("photo pipeline failed", "chat_id", cid, "err", err)
		}
		r.send(cid, apologyText)
	}
}

func (r *Router) processPhoto(ctx context.Context, msg *tgbotapi.Message) error {
	cid := msg.Chat.ID

	ph := largestVariant(msg.Photo)
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		return fmt.Errorf("%w: get file: %v", waste.ErrAcquisition, err)
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	data, err := download(url)
	if err != nil {
		return fmt.Errorf("%w: download: %v", waste.ErrAcquisition, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", waste.ErrAcquisition)
	}

	ref, err := r.Blobs.Save(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: save blob: %v", waste.ErrAcquisition, err)
	}

	// при ошибке классификации блоб остаётся на месте
	res, err := r.Classifier.Classify(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: %v", waste.ErrClassification, err)
	}

	label := waste.Label(res.Class)
	confidence := waste.ConfidencePercent(res.Confidence)

	reply := tgbotapi.NewMessage(cid, resultText(label, confidence))
	reply.ParseMode = "Markdown"
	reply.ReplyMarkup = makeFeedbackKeyboard()
	sent, err := r.Bot.Send(reply)
	if err != nil {
		return fmt.Errorf("send result: %w", err)
	}

	// Сообщение уже у пользователя; если запись не легла, остаётся
	// расхождение между показанным и записанным. Не маскируем —
	// логируем с идентификаторами для сверки.
	a := waste.Answer{
		BlobRef:        ref,
		PredictedClass: res.Class,
		Confidence:     confidence,
		ChatID:         cid,
		MessageID:      sent.MessageID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := r.Store.AppendAnswer(ctx, a); err != nil {
		r.Log.Errorw("answer not persisted after send",
			"chat_id", cid, "message_id", sent.MessageID, "blob_ref", ref, "err", err)
	}
	return nil
}

// largestVariant выбирает вариант с наибольшей площадью, не полагаясь
// на порядок массива в апдейте.
func largestVariant(photos []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}

func download(url string) ([]byte, error) {
	resp, err := httpClient().Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
