package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainreservation "bookstay/internal/domain/reservation"
	"bookstay/internal/domain/shared/dates"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection("reservations")}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *domainreservation.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	_, err := r.col.InsertOne(ctx, newReservationDocument(res))
	return err
}

func (r *ReservationRepository) ByID(ctx context.Context, id string) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := doc.toDomain()
	return &res, nil
}

func (r *ReservationRepository) ByUsername(ctx context.Context, username string) ([]domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"username": username})
}

func (r *ReservationRepository) ByAccommodation(ctx context.Context, accommodationID string) ([]domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"accommodationId": accommodationID})
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status domainreservation.Status) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	return err
}

func (r *ReservationRepository) CancelPendingOverlapping(ctx context.Context, accommodationID string, query dates.Range) error {
	filter := bson.M{
		"accommodationId": accommodationID,
		"status":          string(domainreservation.StatusPending),
		"startDate":       bson.M{"$lte": query.End},
		"endDate":         bson.M{"$gte": query.Start},
	}
	_, err := r.col.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": string(domainreservation.StatusCancelled)}},
	)
	return err
}

func (r *ReservationRepository) CountFutureConfirmedByGuest(ctx context.Context, username string, after time.Time) (int, error) {
	filter := bson.M{
		"username": username,
		"status":   string(domainreservation.StatusConfirmed),
		"endDate":  bson.M{"$gt": after},
	}
	count, err := r.col.CountDocuments(ctx, filter)
	return int(count), err
}

func (r *ReservationRepository) CountFutureConfirmedByAccommodations(ctx context.Context, accommodationIDs []string, after time.Time) (int, error) {
	if len(accommodationIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"accommodationId": bson.M{"$in": accommodationIDs},
		"status":          string(domainreservation.StatusConfirmed),
		"endDate":         bson.M{"$gt": after},
	}
	count, err := r.col.CountDocuments(ctx, filter)
	return int(count), err
}

func (r *ReservationRepository) ExistsConfirmedStay(ctx context.Context, username string, accommodationIDs []string, now time.Time) (bool, error) {
	if len(accommodationIDs) == 0 {
		return false, nil
	}
	filter := bson.M{
		"username":        username,
		"accommodationId": bson.M{"$in": accommodationIDs},
		"status":          string(domainreservation.StatusConfirmed),
		"startDate":       bson.M{"$lte": now},
	}
	count, err := r.col.CountDocuments(ctx, filter)
	return count > 0, err
}

func (r *ReservationRepository) UpdateUsername(ctx context.Context, oldUsername, newUsername string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"username": oldUsername},
		bson.M{"$set": bson.M{"username": newUsername}},
	)
	return err
}

func (r *ReservationRepository) RemoveByUsername(ctx context.Context, username string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"username": username})
	return err
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M) ([]domainreservation.Reservation, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	reservations := make([]domainreservation.Reservation, 0)
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		reservations = append(reservations, doc.toDomain())
	}
	return reservations, cursor.Err()
}

type reservationDocument struct {
	ID              string    `bson:"_id"`
	AccommodationID string    `bson:"accommodationId"`
	Username        string    `bson:"username"`
	StartDate       time.Time `bson:"startDate"`
	EndDate         time.Time `bson:"endDate"`
	Price           int       `bson:"price"`
	UnitPrice       int       `bson:"unitPrice"`
	Guests          int       `bson:"guests"`
	Status          string    `bson:"status"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:              res.ID,
		AccommodationID: res.AccommodationID,
		Username:        res.Username,
		StartDate:       res.Start,
		EndDate:         res.End,
		Price:           res.Price,
		UnitPrice:       res.UnitPrice,
		Guests:          res.Guests,
		Status:          string(res.Status),
	}
}

func (d reservationDocument) toDomain() domainreservation.Reservation {
	return domainreservation.Reservation{
		ID:              d.ID,
		AccommodationID: d.AccommodationID,
		Username:        d.Username,
		Start:           d.StartDate.UTC(),
		End:             d.EndDate.UTC(),
		Price:           d.Price,
		UnitPrice:       d.UnitPrice,
		Guests:          d.Guests,
		Status:          domainreservation.Status(d.Status),
	}
}
