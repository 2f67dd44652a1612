package importer

import (
	"encoding/json"
	"fmt"

	"github.com/gaocuixia/running-journal/internal/models"
)

// Bundle is the JSON import/export envelope holding both record kinds.
type Bundle struct {
	Articles []models.Article `json:"articles"`
	Events   []models.Event   `json:"events"`
}

// ParseBundle decodes a JSON import. Two shapes are accepted: the
// {articles, events} bundle, and the legacy bare array of articles that
// older exports produced.
func ParseBundle(data []byte) (*Bundle, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("importer: file is not valid JSON")
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err == nil && (b.Articles != nil || b.Events != nil) {
		return &b, nil
	}

	var legacy []models.Article
	if err := json.Unmarshal(data, &legacy); err == nil {
		return &Bundle{Articles: legacy}, nil
	}

	return nil, fmt.Errorf("importer: unrecognized import format")
}
