package models

import (
	"errors"
	"fmt"
	"strings"

	"places/pkg/geo"
)

// Place is a persisted favourite place. It is created once from a finished
// draft and never changed afterwards.
type Place struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	ImageURI string         `json:"imageUri"`
	Location geo.Coordinate `json:"location"`
	// Address is derived from Location and may be empty when reverse
	// geocoding was unavailable.
	Address string `json:"address"`
}

var (
	ErrEmptyTitle = errors.New("title is empty")
	ErrNoImage    = errors.New("image uri is empty")
)

// Validate checks the fields a place needs before it may be written.
func (p Place) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.ImageURI == "" {
		return ErrNoImage
	}
	if err := p.Location.Validate(); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	return nil
}
