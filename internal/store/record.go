package store

import (
	"time"

	"places/internal/models"
	"places/pkg/geo"
)

// placeRecord is the row layout of the places table. Seq only exists to keep
// insertion order; ID is the public identifier.
type placeRecord struct {
	Seq       uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        string    `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	Title     string    `gorm:"column:title;not null"`
	ImageURI  string    `gorm:"column:image_uri;not null"`
	Lat       float64   `gorm:"column:lat;not null"`
	Lng       float64   `gorm:"column:lng;not null"`
	Address   string    `gorm:"column:address;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (placeRecord) TableName() string { return "places" }

func toRecord(p models.Place) placeRecord {
	return placeRecord{
		ID:       p.ID,
		Title:    p.Title,
		ImageURI: p.ImageURI,
		Lat:      p.Location.Lat,
		Lng:      p.Location.Lng,
		Address:  p.Address,
	}
}

func (r placeRecord) toPlace() models.Place {
	return models.Place{
		ID:       r.ID,
		Title:    r.Title,
		ImageURI: r.ImageURI,
		Location: geo.Coordinate{Lat: r.Lat, Lng: r.Lng},
		Address:  r.Address,
	}
}
