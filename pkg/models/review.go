package models

// Review ids follow the form "review-<N>"; BookID references an existing
// Book id at creation time.
type Review struct {
	ID        string `json:"id"`
	BookID    string `json:"bookId"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
	Timestamp string `json:"timestamp"`
	Verified  bool   `json:"verified"`
}
