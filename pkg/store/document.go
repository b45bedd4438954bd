package store

// Document is one knowledge paragraph scored against a query
type Document struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}
