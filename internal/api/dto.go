package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gaocuixia/running-journal/internal/models"
)

// ArticleRequest is the request body for creating or updating an article.
type ArticleRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Validate checks the article payload. Date may be empty on create (it
// defaults to today) but must be a calendar date when present.
func (r ArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Date, validation.Date("2006-01-02")),
	)
}

func (r ArticleRequest) toModel() models.Article {
	return models.Article{
		Title:    r.Title,
		Date:     r.Date,
		Category: r.Category,
		Content:  r.Content,
	}
}

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Name       string  `json:"name"`
	Date       string  `json:"date"`
	Distance   float64 `json:"distance"`
	Location   string  `json:"location"`
	FinishTime string  `json:"finishTime"`
	Category   string  `json:"category"`
	Notes      string  `json:"notes"`
}

// Validate checks the event payload. Distance must be non-negative.
func (r EventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Distance, validation.Min(0.0)),
		validation.Field(&r.Date, validation.Date("2006-01-02")),
	)
}

func (r EventRequest) toModel() models.Event {
	return models.Event{
		Name:       r.Name,
		Date:       r.Date,
		Distance:   r.Distance,
		Location:   r.Location,
		FinishTime: r.FinishTime,
		Category:   r.Category,
		Notes:      r.Notes,
	}
}

// ArticleListResponse wraps filtered and sorted article listings.
type ArticleListResponse struct {
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total"`
}

// EventListResponse wraps filtered and sorted event listings.
type EventListResponse struct {
	Events []models.Event `json:"events"`
	Total  int            `json:"total"`
}

// ImportResponse reports the aggregate count of imported records.
type ImportResponse struct {
	Imported int `json:"imported"`
}
