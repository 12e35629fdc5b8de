package main

import (
	"encoding/csv"
	"flag"
	"fmt"
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
	in := flag.String("in", "data/books.csv", "input CSV path for books")
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

	n, err := importBooks(st, *in)
	if err != nil {
		logger.Fatal("import books failed", zap.Error(err))
	}
	logger.Info("imported books", zap.Int("count", n), zap.String("path", *in))
}

// importBooks appends every data row to the store; ids in the CSV are
// ignored, the store assigns fresh sequential ones.
func importBooks(st *store.Store, inPath string) (int, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) <= 1 {
		return 0, nil
	}

	items := make([]models.Book, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		b, err := parseBookRecord(rec)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, b)
	}

	created, err := st.AddBooks(items)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

func parseBookRecord(rec []string) (models.Book, error) {
	if len(rec) != 17 {
		return models.Book{}, fmt.Errorf("expected 17 columns, got %d", len(rec))
	}

	price, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return models.Book{}, fmt.Errorf("price: %w", err)
	}
	rating := 0.0
	if rec[12] != "" {
		if rating, err = strconv.ParseFloat(rec[12], 64); err != nil {
			return models.Book{}, fmt.Errorf("rating: %w", err)
		}
	}
	reviewCount := 0
	if rec[13] != "" {
		if reviewCount, err = strconv.Atoi(rec[13]); err != nil {
			return models.Book{}, fmt.Errorf("reviewCount: %w", err)
		}
	}
	inStock := true
	if rec[14] != "" {
		if inStock, err = strconv.ParseBool(rec[14]); err != nil {
			return models.Book{}, fmt.Errorf("inStock: %w", err)
		}
	}
	featured := false
	if rec[15] != "" {
		if featured, err = strconv.ParseBool(rec[15]); err != nil {
			return models.Book{}, fmt.Errorf("featured: %w", err)
		}
	}
	var pages *int
	if rec[16] != "" {
		n, err := strconv.Atoi(rec[16])
		if err != nil {
			return models.Book{}, fmt.Errorf("pages: %w", err)
		}
		pages = &n
	}

	return models.Book{
		Title:         rec[1],
		Author:        rec[2],
		Description:   rec[3],
		Image:         rec[4],
		Price:         price,
		ISBN:          rec[6],
		Genre:         splitList(rec[7]),
		Tags:          splitList(rec[8]),
		DatePublished: rec[9],
		Language:      rec[10],
		Publisher:     rec[11],
		Rating:        rating,
		ReviewCount:   reviewCount,
		InStock:       inStock,
		Featured:      featured,
		Pages:         pages,
	}, nil
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "|")
}
