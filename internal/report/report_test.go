package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"waste-bot/internal/blob"
	"waste-bot/internal/waste"
)

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func answer(ref, class string, conf int) waste.Answer {
	return waste.Answer{
		BlobRef:        ref,
		PredictedClass: class,
		Confidence:     conf,
		ChatID:         1,
		CreatedAt:      time.Now(),
	}
}

func TestGenerateRowPerRecord(t *testing.T) {
	ctx := context.Background()
	blobs, err := blob.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatal(err)
	}

	ref1, err := blobs.Save(ctx, testJPEG(t, 640, 480))
	if err != nil {
		t.Fatal(err)
	}
	ref2, err := blobs.Save(ctx, testJPEG(t, 100, 100))
	if err != nil {
		t.Fatal(err)
	}

	answers := []waste.Answer{
		answer(ref1, waste.ClassGlass, 87),
		answer("missing-blob.jpg", waste.ClassPaper, 42), // блоб удалён — строка остаётся
		answer(ref2, "WEIRD_CODE", 5),
	}

	out := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Generate(ctx, answers, blobs, out); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open generated report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != len(answers)+1 {
		t.Fatalf("rows = %d, want header + %d data rows", len(rows), len(answers))
	}
	if rows[0][1] != "Тип мусора" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "стекло" || rows[1][2] != "87" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][1] != "бумага" || rows[2][2] != "42" {
		t.Errorf("row 2 (missing blob) = %v", rows[2])
	}
	if rows[3][1] != waste.FallbackLabel {
		t.Errorf("row 3 label = %q, want fallback", rows[3][1])
	}
}

func TestGenerateEmptyStore(t *testing.T) {
	ctx := context.Background()
	blobs, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Generate(ctx, nil, blobs, out); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only", len(rows))
	}
}

func TestGenerateReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	blobs, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "report.xlsx")
	// «прежний» отчёт
	if err := Generate(ctx, []waste.Answer{answer("x", waste.ClassMetal, 10)}, blobs, out); err != nil {
		t.Fatal(err)
	}

	if err := Generate(ctx, []waste.Answer{
		answer("x", waste.ClassTrash, 20),
		answer("y", waste.ClassPaper, 30),
	}, blobs, out); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open regenerated: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(sheetName)
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3 (full regeneration)", len(rows))
	}

	// временных файлов не остаётся
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("leftover files in output dir: %v", entries)
	}
}

func TestGenerateUnwritablePath(t *testing.T) {
	ctx := context.Background()
	blobs, err := blob.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// каталог нельзя создать: путь упирается в обычный файл
	base := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(base, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	err = Generate(ctx, nil, blobs, filepath.Join(base, "report.xlsx"))
	if !errors.Is(err, waste.ErrReport) {
		t.Fatalf("err = %v, want waste.ErrReport", err)
	}
}
