package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"bookhub/pkg/models"
)

const (
	booksKey   = "books"
	reviewsKey = "reviews"
)

// ErrBookNotFound is returned when a referenced book id does not exist.
var ErrBookNotFound = errors.New("book not found")

type Config struct {
	BooksPath   string
	ReviewsPath string
}

// Store owns the two in-memory collections and their backing files.
// Every mutate+persist sequence runs under the write lock, so two
// concurrent creates cannot lose each other's append or compute the
// same next id.
type Store struct {
	mu      sync.RWMutex
	cfg     Config
	log     *zap.Logger
	books   []models.Book
	reviews []models.Review
}

// Open loads both collections. A missing, unreadable or malformed file
// is logged and treated as an empty collection, never fatal.
func Open(cfg Config, log *zap.Logger) *Store {
	return &Store{
		cfg:     cfg,
		log:     log,
		books:   loadCollection[models.Book](cfg.BooksPath, booksKey, log),
		reviews: loadCollection[models.Review](cfg.ReviewsPath, reviewsKey, log),
	}
}

// loadCollection accepts either a bare JSON array or an object holding
// the array under key. Anything else defaults to empty with a warning.
func loadCollection[T any](path, key string, log *zap.Logger) []T {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("collection file unreadable, starting empty",
			zap.String("path", path), zap.Error(err))
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err == nil {
		if inner, ok := doc[key]; ok {
			if err := json.Unmarshal(inner, &items); err == nil {
				return items
			}
		}
	}

	log.Warn("collection file has unexpected shape, starting empty",
		zap.String("path", path), zap.String("key", key))
	return []T{}
}

// saveCollection overwrites path with {key: items}, pretty-printed with
// a trailing newline so the files stay human-diffable.
func saveCollection[T any](path, key string, items []T) error {
	b, err := json.MarshalIndent(map[string][]T{key: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nextBookID returns max numeric id + 1 as a string; ids that do not
// parse as base-10 integers are ignored.
func nextBookID(books []models.Book) string {
	maxID := 0
	for _, b := range books {
		if n, err := strconv.Atoi(b.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	return strconv.Itoa(maxID + 1)
}

var reviewIDPattern = regexp.MustCompile(`^review-(\d+)$`)

// nextReviewID returns review-<max+1> over ids matching review-<digits>.
func nextReviewID(reviews []models.Review) string {
	maxID := 0
	for _, r := range reviews {
		m := reviewIDPattern.FindStringSubmatch(r.ID)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
			maxID = n
		}
	}
	return fmt.Sprintf("review-%d", maxID+1)
}

// ParseDate accepts an ISO-8601 calendar date or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Books returns a copy of the collection; never nil, so an empty
// catalog serializes as [] rather than null.
func (s *Store) Books() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Store) BookByID(id string) (models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

func (s *Store) FeaturedBooks() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.books, func(b models.Book, _ int) bool {
		return b.Featured
	})
}

// PublishedBetween returns books whose datePublished parses and falls in
// [start, end] inclusive. Unparseable dates are skipped, not errors.
func (s *Store) PublishedBetween(start, end time.Time) []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.books, func(b models.Book, _ int) bool {
		d, ok := ParseDate(b.DatePublished)
		return ok && !d.Before(start) && !d.After(end)
	})
}

// TopRated returns up to limit books sorted by rating*reviewCount
// descending. The sort is stable so ties keep storage order.
func (s *Store) TopRated(limit int) []models.Book {
	out := s.Books()
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(b models.Book) float64 {
	return b.Rating * float64(b.ReviewCount)
}

func (s *Store) Reviews() []models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Review, len(s.reviews))
	copy(out, s.reviews)
	return out
}

// ReviewsForBook returns the book's reviews in storage order.
func (s *Store) ReviewsForBook(bookID string) []models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.reviews, func(r models.Review, _ int) bool {
		return r.BookID == bookID
	})
}

// AddBook assigns the next id, appends and persists the book collection.
func (s *Store) AddBook(b models.Book) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = nextBookID(s.books)
	s.books = append(s.books, b)
	if err := saveCollection(s.cfg.BooksPath, booksKey, s.books); err != nil {
		s.books = s.books[:len(s.books)-1]
		return models.Book{}, err
	}
	return b, nil
}

// AddReview verifies the referenced book exists, assigns the next review
// id, appends, bumps the book's reviewCount by exactly 1 and persists
// both collections. On ErrBookNotFound nothing is mutated or written.
func (s *Store) AddReview(r models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.books {
		if s.books[i].ID == r.BookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Review{}, ErrBookNotFound
	}

	r.ID = nextReviewID(s.reviews)
	s.reviews = append(s.reviews, r)
	if err := saveCollection(s.cfg.ReviewsPath, reviewsKey, s.reviews); err != nil {
		s.reviews = s.reviews[:len(s.reviews)-1]
		return models.Review{}, err
	}

	s.books[idx].ReviewCount++
	if err := saveCollection(s.cfg.BooksPath, booksKey, s.books); err != nil {
		return models.Review{}, err
	}
	return r, nil
}

// AddBooks appends a batch, assigning ids in order, and persists the
// collection once at the end. Used by the CSV import tool.
func (s *Store) AddBooks(items []models.Book) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.books
	created := make([]models.Book, 0, len(items))
	for _, b := range items {
		b.ID = nextBookID(s.books)
		s.books = append(s.books, b)
		created = append(created, b)
	}
	if err := saveCollection(s.cfg.BooksPath, booksKey, s.books); err != nil {
		s.books = old
		return nil, err
	}
	return created, nil
}
