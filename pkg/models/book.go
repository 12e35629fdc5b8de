package models

// Book is one catalog record, both on the wire and on disk.
//
// Date fields stay ISO-8601 strings: the collections mirror JSON files
// edited by hand, so parsing happens at the request boundary instead of
// during load.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Image         string   `json:"image"`
	ISBN          string   `json:"isbn"`
	Genre         []string `json:"genre"`
	Tags          []string `json:"tags"`
	DatePublished string   `json:"datePublished"`
	Language      string   `json:"language"`
	Publisher     string   `json:"publisher"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	InStock       bool     `json:"inStock"`
	Featured      bool     `json:"featured"`
	Pages         *int     `json:"pages,omitempty"`
}
