// Package classify — клиент внешнего сервиса классификации мусора.
// Сервис для нас непрозрачен: один multipart POST, JSON-ответ
// {class, confidence}. Ретраев нет, ошибку решает вызывающий.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// Result — разобранный ответ классификатора. Confidence может
// отсутствовать в ответе, тогда наверху он считается нулём.
type Result struct {
	Class      string   `json:"class"`
	Confidence *float64 `json:"confidence"`
}

type Client struct {
	endpoint string // базовый URL сервиса, без хвостового /
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

// Classify загружает байты изображения в сервис и возвращает результат.
// Любая сетевая или протокольная проблема — одна ошибка без ретраев.
func (c *Client) Classify(ctx context.Context, data []byte) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="photo.jpg"`)
	hdr.Set("Content-Type", sniffContentType(data))
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(data); err != nil {
		return Result{}, err
	}
	if err := mw.Close(); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/wastes/classify/", &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("classify status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("classify response: %w", err)
	}
	if strings.TrimSpace(res.Class) == "" {
		return Result{}, fmt.Errorf("classify response: empty class")
	}
	return res, nil
}

func sniffContentType(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	return "application/octet-stream"
}
