package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wanderplan/trip-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTripNotFound = errors.New("trip not found")

// TripRecord is the persisted row: the whole TripState as one jsonb
// document, so a save is a single-row write and therefore all-or-nothing.
type TripRecord struct {
	ID            string    `gorm:"primaryKey"`
	Destination   string    `gorm:"index"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	Document      []byte    `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TripRecord) TableName() string { return "trips" }

type TripRepository interface {
	Load(ctx context.Context, tripID string) (*models.TripState, error)
	Save(ctx context.Context, trip *models.TripState) error
	List(ctx context.Context) ([]models.TripState, error)
	Delete(ctx context.Context, tripID string) error
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) Load(ctx context.Context, tripID string) (*models.TripState, error) {
	var record TripRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return decodeTrip(record)
}

func (r *tripRepository) Save(ctx context.Context, trip *models.TripState) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return err
	}

	record := TripRecord{
		ID:            trip.ID,
		Destination:   trip.Plan.DestinationCity,
		DepartureDate: trip.Plan.DepartureDate,
		ReturnDate:    trip.Plan.ReturnDate,
		Document:      doc,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"destination", "departure_date", "return_date", "document", "updated_at"}),
	}).Create(&record).Error
}

func (r *tripRepository) List(ctx context.Context) ([]models.TripState, error) {
	var records []TripRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	trips := make([]models.TripState, 0, len(records))
	for _, rec := range records {
		trip, err := decodeTrip(rec)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
	}
	return trips, nil
}

func (r *tripRepository) Delete(ctx context.Context, tripID string) error {
	res := r.db.WithContext(ctx).Delete(&TripRecord{}, "id = ?", tripID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTripNotFound
	}
	return nil
}

func decodeTrip(record TripRecord) (*models.TripState, error) {
	var trip models.TripState
	if err := json.Unmarshal(record.Document, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}
