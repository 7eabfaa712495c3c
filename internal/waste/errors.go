package waste

import "errors"

// Таксономия ошибок конвейера. Конкретные причины заворачиваются через %w,
// наверху различаем через errors.Is.
var (
	// ErrAcquisition — не удалось скачать или сохранить фото.
	ErrAcquisition = errors.New("acquisition failed")
	// ErrClassification — сервис классификации недоступен или ответил мусором.
	ErrClassification = errors.New("classification failed")
	// ErrStore — хранилище ответов/статистики недоступно.
	ErrStore = errors.New("store unavailable")
	// ErrReport — не удалось собрать или записать отчёт.
	ErrReport = errors.New("report generation failed")
)
