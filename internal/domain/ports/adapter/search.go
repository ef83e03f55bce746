package adapter

import "context"

// Snippet is one piece of real-world context returned by the enrichment
// service.
type Snippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchAdapter is the optional enrichment port used to ground generated
// entities in real-world context.
type SearchAdapter interface {
	Search(ctx context.Context, query string, count int) ([]Snippet, error)
}
