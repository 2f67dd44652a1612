// Package models defines the journal's domain record types.
package models

// Article is a free-text journal entry shown on the reflections grid.
type Article struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"` // YYYY-MM-DD
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Event is a structured race-participation record.
//
// Distance is in kilometers. FinishTime is free text as entered
// ("3:45:12", "破四" and the like) and is never interpreted.
type Event struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Date       string  `json:"date"` // YYYY-MM-DD
	Distance   float64 `json:"distance"`
	Location   string  `json:"location"`
	FinishTime string  `json:"finishTime"`
	Category   string  `json:"category"`
	Notes      string  `json:"notes,omitempty"`
}
