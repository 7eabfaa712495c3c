// Package report — выгрузка лога ответов в xlsx: миниатюра фото,
// тип мусора, точность. Повторный запуск полностью пересобирает
// документ из текущего содержимого лога.
package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"waste-bot/internal/blob"
	"waste-bot/internal/waste"
)

// FileName — имя итогового документа, как в исходной выгрузке.
const FileName = "waste_classification_report.xlsx"

const (
	sheetName = "Отчет по классификации"
	thumbSide = 210 // px, как в исходной выгрузке
	rowHeight = 180
)

// Generate собирает отчёт по всем ответам и атомарно кладёт его в outPath.
// Отсутствующий или нечитаемый блоб не срывает выгрузку: строка остаётся,
// картинка просто опускается.
func Generate(ctx context.Context, answers []waste.Answer, blobs blob.Store, outPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	for col, w := range map[string]float64{"A": 30, "B": 20, "C": 15} {
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return fmt.Errorf("%w: %v", waste.ErrReport, err)
		}
	}
	headers := map[string]string{"A1": "Фото", "B1": "Тип мусора", "C1": "Точность (%)"}
	for cell, v := range headers {
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("%w: %v", waste.ErrReport, err)
		}
	}

	for i, a := range answers {
		row := i + 2
		if thumb := loadThumbnail(ctx, blobs, a.BlobRef); thumb != nil {
			pic := &excelize.Picture{Extension: ".jpg", File: thumb}
			if err := f.AddPictureFromBytes(sheetName, fmt.Sprintf("A%d", row), pic); err != nil {
				return fmt.Errorf("%w: embed image: %v", waste.ErrReport, err)
			}
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), waste.Label(a.PredictedClass)); err != nil {
			return fmt.Errorf("%w: %v", waste.ErrReport, err)
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), a.Confidence); err != nil {
			return fmt.Errorf("%w: %v", waste.ErrReport, err)
		}
		if err := f.SetRowHeight(sheetName, row, rowHeight); err != nil {
			return fmt.Errorf("%w: %v", waste.ErrReport, err)
		}
	}

	return writeAtomic(f, outPath)
}

// writeAtomic пишет во временный файл в том же каталоге и переименовывает:
// при сбое прежний отчёт остаётся нетронутым.
func writeAtomic(f *excelize.File, outPath string) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.xlsx")
	if err != nil {
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", waste.ErrReport, err)
	}
	return nil
}

func loadThumbnail(ctx context.Context, blobs blob.Store, ref string) []byte {
	data, err := blobs.Load(ctx, ref)
	if err != nil {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > thumbSide || h > thumbSide {
		scale := float64(thumbSide) / float64(w)
		if sh := float64(thumbSide) / float64(h); sh < scale {
			scale = sh
		}
		newW := int(float64(w)*scale + 0.5)
		newH := int(float64(h)*scale + 0.5)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}
		img = scaleDownNN(img, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil
	}
	return out.Bytes()
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW := sb.Dx()
	srcH := sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
