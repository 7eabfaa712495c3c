// Офлайн-выгрузка отчёта: читает лог ответов и собирает xlsx.
// Идемпотентна — каждый запуск пересобирает документ целиком.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"waste-bot/internal/blob"
	"waste-bot/internal/report"
	"waste-bot/internal/store"
	"waste-bot/internal/store/postgres"
	"waste-bot/internal/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "waste-bot.db", "путь к sqlite-базе")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres DSN (вместо sqlite)")
	uploadsDir := flag.String("uploads", "uploads", "каталог с блобами фотографий")
	out := flag.String("out", report.FileName, "путь итогового xlsx")
	flag.Parse()

	var (
		st  store.Store
		err error
	)
	if *databaseURL != "" {
		st, err = postgres.Open(*databaseURL)
	} else {
		st, err = sqlite.Open(*dbPath)
	}
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	blobs, err := blob.NewLocal(*uploadsDir)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	answers, err := st.Answers(ctx)
	if err != nil {
		log.Fatalf("answers: %v", err)
	}
	if err := report.Generate(ctx, answers, blobs, *out); err != nil {
		log.Fatalf("report: %v", err)
	}
	log.Printf("Отчет сохранен в файл: %s (%d записей)", *out, len(answers))
}
