package books

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookhub/internal/events"
	"bookhub/pkg/models"
	"bookhub/pkg/store"
)

type Handler struct {
	Store *store.Store
	Hub   *events.Hub
}

func NewHandler(st *store.Store, hub *events.Hub) *Handler {
	return &Handler{Store: st, Hub: hub}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                    // GET /api/books
	rg.GET("/published", h.published)     // GET /api/books/published?start&end
	rg.GET("/top-rated", h.topRated)      // GET /api/books/top-rated
	rg.GET("/featured", h.featured)       // GET /api/books/featured
	rg.GET("/:id", h.getByID)             // GET /api/books/:id
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/books", h.create) // POST /api/books
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Books())
}

func (h *Handler) published(c *gin.Context) {
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required"})
		return
	}

	start, ok := store.ParseDate(startRaw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be a valid ISO-8601 date"})
		return
	}
	end, ok := store.ParseDate(endRaw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be a valid ISO-8601 date"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return
	}

	c.JSON(http.StatusOK, h.Store.PublishedBetween(start, end))
}

func (h *Handler) topRated(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.TopRated(10))
}

func (h *Handler) featured(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.FeaturedBooks())
}

func (h *Handler) getByID(c *gin.Context) {
	b, ok := h.Store.BookByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		return
	}
	c.JSON(http.StatusOK, b)
}

type createReq struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Image         string   `json:"image"`
	ISBN          string   `json:"isbn"`
	Genre         []string `json:"genre"`
	Tags          []string `json:"tags"`
	DatePublished string   `json:"datePublished"`
	Language      string   `json:"language"`
	Publisher     string   `json:"publisher"`
	Rating        *float64 `json:"rating"`
	ReviewCount   *int     `json:"reviewCount"`
	InStock       *bool    `json:"inStock"`
	Featured      bool     `json:"featured"`
	Pages         *int     `json:"pages"`
}

func (r createReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Author, validation.Required),
		validation.Field(&r.Price, validation.NotNil, validation.By(finiteNumber), validation.Min(0.0)),
		validation.Field(&r.DatePublished, validation.Required, validation.By(isoDate)),
		validation.Field(&r.Rating, validation.Min(0.0), validation.Max(5.0)),
		validation.Field(&r.ReviewCount, validation.Min(0)),
		validation.Field(&r.Pages, validation.By(positivePages)),
	)
}

func isoDate(value interface{}) error {
	s, _ := value.(string)
	if _, ok := store.ParseDate(s); !ok {
		return errors.New("must be a valid ISO-8601 date")
	}
	return nil
}

// positivePages rejects an explicit zero, which ozzo's Min would treat
// as an absent value and skip.
func positivePages(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if n, ok := v.(int); ok && n < 1 {
		return errors.New("must be a positive integer")
	}
	return nil
}

func finiteNumber(value interface{}) error {
	v, _ := validation.Indirect(value)
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return errors.New("must be a finite number")
	}
	return nil
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book := models.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         *req.Price,
		Image:         req.Image,
		ISBN:          req.ISBN,
		Genre:         req.Genre,
		Tags:          req.Tags,
		DatePublished: req.DatePublished,
		Language:      req.Language,
		Publisher:     req.Publisher,
		InStock:       true,
		Featured:      req.Featured,
		Pages:         req.Pages,
	}
	if book.Genre == nil {
		book.Genre = []string{}
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}
	if book.Language == "" {
		book.Language = "English"
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.ReviewCount != nil {
		book.ReviewCount = *req.ReviewCount
	}
	if req.InStock != nil {
		book.InStock = *req.InStock
	}

	created, err := h.Store.AddBook(book)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save book."})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.BookCreated(created))
	}
	c.JSON(http.StatusCreated, created)
}
