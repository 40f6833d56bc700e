package device

import (
	"context"
	"errors"
	"fmt"
	"io"

	"places/internal/capture"
	"places/pkg/geo"
	"places/pkg/location"
)

// Searcher turns a free text query into a place, like the map screen's
// search box.
type Searcher interface {
	Search(ctx context.Context, query string) (*location.NominatimPlace, error)
}

// PromptNavigator is the terminal version of the map picker screen. The user
// types "lat,lng", or a place name when a Searcher is available; an empty
// answer leaves the picker.
type PromptNavigator struct {
	console  *Console
	searcher Searcher
}

func NewPromptNavigator(console *Console, searcher Searcher) *PromptNavigator {
	return &PromptNavigator{console: console, searcher: searcher}
}

// Navigate has the capture.NavigateFunc signature.
func (n *PromptNavigator) Navigate(ctx context.Context) (geo.Coordinate, error) {
	question := "Pick a location (lat,lng): "
	if n.searcher != nil {
		question = "Pick a location (lat,lng or place name): "
	}
	answer, err := n.console.Prompt(ctx, question)
	if errors.Is(err, io.EOF) || (err == nil && answer == "") {
		return geo.Coordinate{}, capture.ErrCancelled
	}
	if err != nil {
		return geo.Coordinate{}, err
	}

	c, perr := geo.ParseCoordinate(answer)
	if perr == nil {
		return c, nil
	}
	if n.searcher == nil || !errors.Is(perr, geo.ErrMalformed) {
		return geo.Coordinate{}, perr
	}
	place, err := n.searcher.Search(ctx, answer)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("failed to find %q: %w", answer, err)
	}
	return place.Coordinate()
}
