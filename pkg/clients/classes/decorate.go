package classes

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ritmofit/cupos/pkg/logger"
	"github.com/ritmofit/cupos/pkg/seats"
)

// Decorate fills Capacity and CurrentEnrollment on classes the catalog returned without live counts.
// Counts come from the seat store, which lazily initializes unknown classes. When the store fails
// the class falls back to seats.DefaultCapacity and no enrollment. Classes with both counts are
// left untouched. The input slice is not modified.
func Decorate(ctx context.Context, store seats.SeatStoreInterface, list []Class) []Class {
	out := make([]Class, len(list))
	copy(out, list)

	for i := range out {
		class := &out[i]
		if class.Capacity != nil && class.CurrentEnrollment != nil {
			continue
		}
		seat := lookupSeat(ctx, store, string(class.ID))
		capacity, enrollment := seat.Capacity, seat.CurrentEnrollment
		if class.Capacity == nil {
			class.Capacity = &capacity
		}
		if class.CurrentEnrollment == nil {
			class.CurrentEnrollment = &enrollment
		}
	}
	return out
}

func lookupSeat(ctx context.Context, store seats.SeatStoreInterface, classID string) seats.SeatCount {
	fallback := seats.SeatCount{
		ClassID:           classID,
		Capacity:          seats.DefaultCapacity,
		CurrentEnrollment: seats.DefaultEnrollment,
	}
	log := logger.Logger(ctx).WithField("class_id", classID)

	if classID == "" {
		log.Warn("class without id, using default seat count")
		return fallback
	}

	seat, err := store.Get(ctx, classID)
	if err == nil && seat == nil {
		seat, err = store.InitializeDefault(ctx, classID)
	}
	if err != nil || seat == nil {
		log.WithFields(logrus.Fields{
			"capacity":   fallback.Capacity,
			"enrollment": fallback.CurrentEnrollment,
		}).WithError(err).Warn("seat store unavailable, using default seat count")
		return fallback
	}
	return *seat
}
