package reviews

import (
	"errors"
	"net/http"
	"time"

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
	rg.GET("/books/:id/reviews", h.listByBook)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.create)
}

func (h *Handler) listByBook(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Store.BookByID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		return
	}
	c.JSON(http.StatusOK, h.Store.ReviewsForBook(id))
}

type createReq struct {
	BookID    string `json:"bookId"`
	Author    string `json:"author"`
	Rating    *int   `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
	Verified  bool   `json:"verified"`
}

func (r createReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required),
		validation.Field(&r.Author, validation.Required),
		validation.Field(&r.Rating, validation.NotNil, validation.By(ratingInRange)),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Comment, validation.Required),
	)
}

func ratingInRange(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	if n, ok := v.(int); ok && (n < 1 || n > 5) {
		return errors.New("must be between 1 and 5")
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

	// A parseable client timestamp is kept, normalized to RFC3339 UTC;
	// anything else falls back to the server clock.
	ts := time.Now().UTC().Format(time.RFC3339)
	if req.Timestamp != "" {
		if t, ok := store.ParseDate(req.Timestamp); ok {
			ts = t.UTC().Format(time.RFC3339)
		}
	}

	review := models.Review{
		BookID:    req.BookID,
		Author:    req.Author,
		Rating:    *req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Timestamp: ts,
		Verified:  req.Verified,
	}

	created, err := h.Store.AddReview(review)
	if errors.Is(err, store.ErrBookNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review."})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(events.ReviewCreated(created))
	}
	c.JSON(http.StatusCreated, created)
}
