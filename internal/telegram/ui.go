package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackCorrect = "fb_correct"
	callbackWrong   = "fb_wrong"

	welcomeText = "Привет! Отправь мне фотографию мусора, и я определю его тип. " +
		"Можно отправить несколько фотографий сразу."
	apologyText = "Произошла ошибка при обработке изображения. " +
		"Пожалуйста, попробуйте еще раз."
	transientErrText = "Что-то пошло не так. Попробуйте ещё раз чуть позже."
)

// Кнопки отзыва под результатом классификации.
func makeFeedbackKeyboard() tgbotapi.InlineKeyboardMarkup {
	yes := tgbotapi.NewInlineKeyboardButtonData("Верно ✅", callbackCorrect)
	no := tgbotapi.NewInlineKeyboardButtonData("Неверно ❌", callbackWrong)
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(yes, no))
}

func resultText(label string, confidence int) string {
	return fmt.Sprintf("*Тип мусора:* %s\n*Точность:* %d%%", label, confidence)
}
