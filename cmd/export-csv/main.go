package main

import (
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bookhub/pkg/models"
	"bookhub/pkg/store"
	"bookhub/pkg/utils"
)

func main() {
	out := flag.String("out", "data/books.csv", "output CSV path for books")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := utils.LoadConfig()
	st := store.Open(store.Config{
		BooksPath:   filepath.Join(cfg.DataDir, "books.json"),
		ReviewsPath: filepath.Join(cfg.DataDir, "reviews.json"),
	}, logger)

	if err := exportBooks(st.Books(), *out); err != nil {
		logger.Fatal("export books failed", zap.Error(err))
	}
	logger.Info("exported books", zap.String("path", *out))
}

func exportBooks(items []models.Book, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "title", "author", "description", "image", "price", "isbn",
		"genre", "tags", "datePublished", "language", "publisher",
		"rating", "reviewCount", "inStock", "featured", "pages",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, b := range items {
		pages := ""
		if b.Pages != nil {
			pages = strconv.Itoa(*b.Pages)
		}
		if err := w.Write([]string{
			b.ID,
			b.Title,
			b.Author,
			b.Description,
			b.Image,
			strconv.FormatFloat(b.Price, 'f', -1, 64),
			b.ISBN,
			strings.Join(b.Genre, "|"),
			strings.Join(b.Tags, "|"),
			b.DatePublished,
			b.Language,
			b.Publisher,
			strconv.FormatFloat(b.Rating, 'f', -1, 64),
			strconv.Itoa(b.ReviewCount),
			strconv.FormatBool(b.InStock),
			strconv.FormatBool(b.Featured),
			pages,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
