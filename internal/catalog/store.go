package catalog

import (
	"context"
	"strings"

	"github.com/wanderplan/trip-service/internal/models"
	"gorm.io/gorm"
)

// CatalogActivity is the persisted catalog row.
type CatalogActivity struct {
	ID            string  `gorm:"primaryKey" json:"id"`
	Destination   string  `gorm:"index:idx_catalog_dest_slot;not null" json:"destination"`
	TimeSlot      string  `gorm:"index:idx_catalog_dest_slot;not null" json:"time_slot"`
	Name          string  `gorm:"not null" json:"name"`
	EstimatedCost int     `gorm:"not null" json:"estimated_cost"`
	DurationHours float64 `json:"duration_hours"`
	Rating        float64 `json:"rating"`
	StyleTags     string  `json:"style_tags"` // comma-separated
	Tips          string  `json:"tips"`       // pipe-separated
}

func (CatalogActivity) TableName() string { return "catalog_activities" }

func (c CatalogActivity) toActivity() Activity {
	a := Activity{
		ID:            c.ID,
		Name:          c.Name,
		EstimatedCost: c.EstimatedCost,
		DurationHours: c.DurationHours,
		Rating:        c.Rating,
	}
	if c.Tips != "" {
		a.Tips = strings.Split(c.Tips, "|")
	}
	return a
}

func (c CatalogActivity) tags() []string {
	if c.StyleTags == "" {
		return nil
	}
	return strings.Split(c.StyleTags, ",")
}

// Store lists catalog rows for a destination/slot pair, best-rated first.
type Store interface {
	ListBySlot(ctx context.Context, destination string, slot models.TimeSlot) ([]CatalogActivity, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListBySlot(ctx context.Context, destination string, slot models.TimeSlot) ([]CatalogActivity, error) {
	var rows []CatalogActivity
	err := s.db.WithContext(ctx).
		Where("destination = ? AND time_slot = ?", destination, string(slot)).
		Order("rating DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
