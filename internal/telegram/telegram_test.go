package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"waste-bot/internal/waste"
)

func TestResultText(t *testing.T) {
	got := resultText("стекло", 87)
	want := "*Тип мусора:* стекло\n*Точность:* 87%"
	if got != want {
		t.Errorf("resultText = %q, want %q", got, want)
	}
}

func TestOutcomeFromCallback(t *testing.T) {
	if o, ok := outcomeFromCallback(callbackCorrect); !ok || o != waste.OutcomeCorrect {
		t.Errorf("fb_correct -> %v %v", o, ok)
	}
	if o, ok := outcomeFromCallback(callbackWrong); !ok || o != waste.OutcomeIncorrect {
		t.Errorf("fb_wrong -> %v %v", o, ok)
	}
	for _, data := range []string{"", "hint_next", "fb_", "correct"} {
		if _, ok := outcomeFromCallback(data); ok {
			t.Errorf("unexpected outcome for %q", data)
		}
	}
}

func TestStatsText(t *testing.T) {
	got := statsText(waste.Stats{Correct: 3, Incorrect: 1})
	want := "Верно: 3\nНеверно: 1\nТочность: 75%"
	if got != want {
		t.Errorf("statsText = %q, want %q", got, want)
	}
	if got := statsText(waste.Stats{}); got != "Верно: 0\nНеверно: 0\nТочность: 0%" {
		t.Errorf("empty statsText = %q", got)
	}
}

func TestLargestVariant(t *testing.T) {
	photos := []tgbotapi.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "mid", Width: 320, Height: 240},
	}
	if got := largestVariant(photos); got.FileID != "big" {
		t.Errorf("largestVariant = %s", got.FileID)
	}
	if got := largestVariant(photos[:1]); got.FileID != "small" {
		t.Errorf("single variant = %s", got.FileID)
	}
}

func TestFeedbackKeyboardShape(t *testing.T) {
	kb := makeFeedbackKeyboard()
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard shape = %v", kb.InlineKeyboard)
	}
	row := kb.InlineKeyboard[0]
	if *row[0].CallbackData != callbackCorrect || *row[1].CallbackData != callbackWrong {
		t.Errorf("callback data = %v, %v", *row[0].CallbackData, *row[1].CallbackData)
	}
}
