package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wanderplan/trip-service/internal/models"
	"github.com/wanderplan/trip-service/internal/repository"
	"github.com/wanderplan/trip-service/internal/service"
)

const handleTimeout = 10 * time.Second

// OfferMessage is the payload published by the external price-search feed.
type OfferMessage struct {
	TripID  string `json:"trip_id"`
	WatchID string `json:"watch_id"`
	Price   int    `json:"price"`
	Source  string `json:"source"`
}

// OfferConsumer feeds price-search offers into the auction watches. It goes
// through the trip service, so offers take the same per-trip serialization
// point as user-driven transitions.
type OfferConsumer struct {
	svc service.TripService
}

func NewOfferConsumer(svc service.TripService) *OfferConsumer {
	return &OfferConsumer{svc: svc}
}

func (oc *OfferConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			oc.handleMessage(msg)
		}
		log.Println("[OfferConsumer] channel closed, stopping consumer")
	}()
}

func (oc *OfferConsumer) handleMessage(msg amqp.Delivery) {
	var offer OfferMessage
	if err := json.Unmarshal(msg.Body, &offer); err != nil {
		log.Printf("[OfferConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	watch, err := oc.svc.RecordOffer(ctx, offer.TripID, offer.WatchID, offer.Price, offer.Source)
	if err != nil {
		// A vanished trip or watch is stale routing, not a poison message
		// worth requeueing; a timed-out poll cycle is simply dropped.
		if errors.Is(err, repository.ErrTripNotFound) || errors.Is(err, service.ErrWatchNotFound) {
			log.Printf("[OfferConsumer] dropping offer for unknown watch %s: %v", offer.WatchID, err)
		} else {
			log.Printf("[OfferConsumer] failed to record offer for watch %s: %v", offer.WatchID, err)
		}
		msg.Nack(false, false)
		return
	}

	if watch.Status == models.WatchWon {
		log.Printf("[OfferConsumer] watch %s won at %d (savings %d)", watch.ID, *watch.CurrentBestPrice, watch.Savings)
	}
	msg.Ack(false)
}
