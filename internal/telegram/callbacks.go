package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"waste-bot/internal/waste"
)

// handleCallback принимает нажатие кнопки Верно/Неверно. Идемпотентность
// обеспечивает хранилище (маркер resolved), а не факт редактирования
// сообщения: повторная доставка callback даёт applied=false и счётчики
// не двигаются.
func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	outcome, ok := outcomeFromCallback(cb.Data)
	if !ok || cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	mid := cb.Message.MessageID

	applied, err := r.Store.ResolveAnswer(ctx, cid, mid, outcome)
	if err != nil {
		r.Log.Errorw("feedback not applied", "chat_id", cid, "message_id", mid, "err", err)
		r.send(cid, transientErrText)
		return
	}
	if !applied {
		// дубликат или чужое сообщение — молча игнорируем
		r.Log.Debugw("duplicate feedback ignored", "chat_id", cid, "message_id", mid)
		return
	}

	// Снимаем клавиатуру: показ визуально финализирован. Неудача
	// редактирования не откатывает учтённый отзыв.
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, mid, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := r.Bot.Send(edit); err != nil {
		r.Log.Warnw("keyboard strip failed", "chat_id", cid, "message_id", mid, "err", err)
	}
}

func outcomeFromCallback(data string) (waste.Outcome, bool) {
	switch data {
	case callbackCorrect:
		return waste.OutcomeCorrect, true
	case callbackWrong:
		return waste.OutcomeIncorrect, true
	}
	return "", false
}
