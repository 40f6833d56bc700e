package service

import (
	"context"

	"places/internal/models"
	"places/internal/preview"
)

// PlaceReader is the read side of the store.
type PlaceReader interface {
	ListAll(ctx context.Context) ([]models.Place, error)
	Get(ctx context.Context, id string) (models.Place, error)
}

// PlaceView is a place ready for display.
type PlaceView struct {
	models.Place
	PreviewURL string `json:"previewUrl"`
}

// Places serves the list and detail screens.
type Places struct {
	store    PlaceReader
	resolver *preview.Resolver
}

func NewPlaces(store PlaceReader, resolver *preview.Resolver) *Places {
	return &Places{store: store, resolver: resolver}
}

// List re-reads the store; call it whenever the list screen is shown.
func (p *Places) List(ctx context.Context) ([]PlaceView, error) {
	places, err := p.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PlaceView, 0, len(places))
	for _, pl := range places {
		views = append(views, p.view(pl))
	}
	return views, nil
}

func (p *Places) Detail(ctx context.Context, id string) (PlaceView, error) {
	pl, err := p.store.Get(ctx, id)
	if err != nil {
		return PlaceView{}, err
	}
	return p.view(pl), nil
}

func (p *Places) view(pl models.Place) PlaceView {
	v := PlaceView{Place: pl}
	if p.resolver != nil {
		v.PreviewURL = p.resolver.PreviewURL(pl.Location)
	}
	return v
}
