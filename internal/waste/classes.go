package waste

import "math"

// Коды классов, которые возвращает сервис классификации.
const (
	ClassPaper         = "PAPER"
	ClassGlass         = "GLASS"
	ClassPlastic       = "PLASTIC"
	ClassBiodegradable = "BIODEGRADABLE"
	ClassCardboard     = "CARDBOARD"
	ClassMetal         = "METAL"
	ClassTrash         = "TRASH"
)

// FallbackLabel показываем, если классификатор вернул неизвестный код.
const FallbackLabel = "Не удалось определить"

var labels = map[string]string{
	ClassPaper:         "бумага",
	ClassGlass:         "стекло",
	ClassPlastic:       "пластик",
	ClassBiodegradable: "органические отходы",
	ClassCardboard:     "картон",
	ClassMetal:         "металл",
	ClassTrash:         "другое",
}

// Label переводит код класса в отображаемую строку. Тотальная функция:
// для любого кода возвращает непустой текст.
func Label(code string) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return FallbackLabel
}

// ConfidencePercent переводит дробную уверенность [0,1] в целые проценты.
// Отсутствующее значение считаем нулём.
func ConfidencePercent(score *float64) int {
	if score == nil {
		return 0
	}
	return int(math.Round(*score * 100))
}
