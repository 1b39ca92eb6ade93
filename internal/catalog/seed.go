package catalog

import (
	"log"

	"gorm.io/gorm"
)

// Seed loads a starter catalog for a destination when the table is empty,
// so a fresh deployment can synthesize itineraries immediately.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&CatalogActivity{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rows := defaultCatalog()
	if err := db.Create(&rows).Error; err != nil {
		return err
	}
	log.Printf("[Catalog] seeded %d activities", len(rows))
	return nil
}

func defaultCatalog() []CatalogActivity {
	return []CatalogActivity{
		{ID: "bkk-bf-001", Destination: "Bangkok", TimeSlot: "breakfast", Name: "Rot Fai market breakfast", EstimatedCost: 120, DurationHours: 1, Rating: 4.6, StyleTags: "foodie,local", Tips: "Go before 9am|Cash only"},
		{ID: "bkk-bf-002", Destination: "Bangkok", TimeSlot: "breakfast", Name: "Hotel riverside buffet", EstimatedCost: 350, DurationHours: 1.5, Rating: 4.3, StyleTags: "relaxed"},
		{ID: "bkk-mo-001", Destination: "Bangkok", TimeSlot: "morning", Name: "Grand Palace & Wat Phra Kaew", EstimatedCost: 500, DurationHours: 3, Rating: 4.8, StyleTags: "culture,history", Tips: "Dress code enforced"},
		{ID: "bkk-mo-002", Destination: "Bangkok", TimeSlot: "morning", Name: "Chatuchak weekend market", EstimatedCost: 200, DurationHours: 3, Rating: 4.5, StyleTags: "shopping,local"},
		{ID: "bkk-mo-003", Destination: "Bangkok", TimeSlot: "morning", Name: "Lumpini park bike loop", EstimatedCost: 150, DurationHours: 2, Rating: 4.2, StyleTags: "nature,active"},
		{ID: "bkk-lu-001", Destination: "Bangkok", TimeSlot: "lunch", Name: "Thipsamai pad thai", EstimatedCost: 180, DurationHours: 1, Rating: 4.7, StyleTags: "foodie,local"},
		{ID: "bkk-lu-002", Destination: "Bangkok", TimeSlot: "lunch", Name: "Icon Siam food court", EstimatedCost: 250, DurationHours: 1.5, Rating: 4.4, StyleTags: "shopping"},
		{ID: "bkk-af-001", Destination: "Bangkok", TimeSlot: "afternoon", Name: "Chao Phraya canal boat tour", EstimatedCost: 800, DurationHours: 3, Rating: 4.6, StyleTags: "nature,culture", Tips: "Book the long-tail boat shared"},
		{ID: "bkk-af-002", Destination: "Bangkok", TimeSlot: "afternoon", Name: "Jim Thompson house", EstimatedCost: 200, DurationHours: 2, Rating: 4.5, StyleTags: "culture,history"},
		{ID: "bkk-af-003", Destination: "Bangkok", TimeSlot: "afternoon", Name: "Thai cooking class", EstimatedCost: 1200, DurationHours: 4, Rating: 4.9, StyleTags: "foodie"},
		{ID: "bkk-di-001", Destination: "Bangkok", TimeSlot: "dinner", Name: "Chinatown street food crawl", EstimatedCost: 400, DurationHours: 2.5, Rating: 4.8, StyleTags: "foodie,local", Tips: "Start at Yaowarat gate"},
		{ID: "bkk-di-002", Destination: "Bangkok", TimeSlot: "dinner", Name: "Rooftop dinner at Vertigo", EstimatedCost: 2500, DurationHours: 2, Rating: 4.4, StyleTags: "romantic"},
		{ID: "bkk-ni-001", Destination: "Bangkok", TimeSlot: "night", Name: "Muay Thai night at Rajadamnern", EstimatedCost: 1000, DurationHours: 3, Rating: 4.5, StyleTags: "active,culture"},
		{ID: "bkk-ni-002", Destination: "Bangkok", TimeSlot: "night", Name: "Asiatique riverfront walk", EstimatedCost: 0, DurationHours: 2, Rating: 4.1, StyleTags: "relaxed,shopping"},
	}
}
