package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "bookstay/internal/domain/availability"
	"bookstay/internal/domain/shared/dates"
)

type AvailabilityRepository struct {
	col            *mongo.Collection
	accommodations *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{
		col:            db.Collection("availabilities"),
		accommodations: db.Collection("accommodations"),
	}
}

func (r *AvailabilityRepository) ByID(ctx context.Context, id string) (*domainavailability.Interval, error) {
	var doc intervalDocument
	err := r.col.FindOne(ctx, bson.M{"_id": id, "valid": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	interval := doc.toDomain()
	return &interval, nil
}

func (r *AvailabilityRepository) Insert(ctx context.Context, interval *domainavailability.Interval) error {
	if interval.ID == "" {
		interval.ID = uuid.NewString()
	}
	_, err := r.col.InsertOne(ctx, newIntervalDocument(interval))
	return err
}

func (r *AvailabilityRepository) Overlapping(ctx context.Context, accommodationID string, query dates.Range) ([]domainavailability.Interval, error) {
	filter := bson.M{
		"accommodationId": accommodationID,
		"startDate":       bson.M{"$lte": query.End},
		"endDate":         bson.M{"$gte": query.Start},
		"valid":           true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	intervals := make([]domainavailability.Interval, 0)
	for cursor.Next(ctx) {
		var doc intervalDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		intervals = append(intervals, doc.toDomain())
	}
	return intervals, cursor.Err()
}

// CountOverlapping uses exclusive bounds: intervals sharing only a
// boundary day with the query do not count.
func (r *AvailabilityRepository) CountOverlapping(ctx context.Context, accommodationID string, query dates.Range) (int, error) {
	filter := bson.M{
		"accommodationId": accommodationID,
		"startDate":       bson.M{"$lt": query.End},
		"endDate":         bson.M{"$gt": query.Start},
		"valid":           true,
	}
	count, err := r.col.CountDocuments(ctx, filter)
	return int(count), err
}

func (r *AvailabilityRepository) UpdateRange(ctx context.Context, id, accommodationID string, updated dates.Range) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "accommodationId": accommodationID},
		bson.M{"$set": bson.M{"startDate": updated.Start, "endDate": updated.End}},
	)
	return err
}

func (r *AvailabilityRepository) Invalidate(ctx context.Context, id, accommodationID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "accommodationId": accommodationID},
		bson.M{"$set": bson.M{"valid": false}},
	)
	return err
}

// Search joins accommodations against their valid intervals and returns
// ids of those matching the capacity/location filters with at least one
// interval overlapping the range.
func (r *AvailabilityRepository) Search(ctx context.Context, params domainavailability.SearchParams) ([]string, error) {
	match := bson.M{}
	if params.Guests > 0 {
		match["minCapacity"] = bson.M{"$lte": params.Guests}
		match["maxCapacity"] = bson.M{"$gte": params.Guests}
	}
	if params.Location != "" {
		match["location"] = bson.M{"$regex": params.Location, "$options": "i"}
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "availabilities",
			"localField":   "_id",
			"foreignField": "accommodationId",
			"as":           "availabilities",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"availabilities": bson.M{
				"$filter": bson.M{
					"input": "$availabilities",
					"as":    "interval",
					"cond": bson.M{"$and": bson.A{
						bson.M{"$lte": bson.A{"$$interval.startDate", params.Range.End}},
						bson.M{"$gte": bson.A{"$$interval.endDate", params.Range.Start}},
						bson.M{"$eq": bson.A{"$$interval.valid", true}},
					}},
				},
			},
		}}},
		bson.D{{Key: "$match", Value: bson.M{"availabilities": bson.M{"$ne": bson.A{}}}}},
		bson.D{{Key: "$project", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.accommodations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *AvailabilityRepository) RemoveByAccommodations(ctx context.Context, accommodationIDs []string) error {
	if len(accommodationIDs) == 0 {
		return nil
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"accommodationId": bson.M{"$in": accommodationIDs}})
	return err
}

type intervalDocument struct {
	ID              string    `bson:"_id"`
	AccommodationID string    `bson:"accommodationId"`
	StartDate       time.Time `bson:"startDate"`
	EndDate         time.Time `bson:"endDate"`
	Price           int       `bson:"price"`
	Valid           bool      `bson:"valid"`
	DateCreated     time.Time `bson:"dateCreated"`
}

func newIntervalDocument(i *domainavailability.Interval) intervalDocument {
	return intervalDocument{
		ID:              i.ID,
		AccommodationID: i.AccommodationID,
		StartDate:       i.Start,
		EndDate:         i.End,
		Price:           i.Price,
		Valid:           i.Valid,
		DateCreated:     i.DateCreated,
	}
}

func (d intervalDocument) toDomain() domainavailability.Interval {
	return domainavailability.Interval{
		ID:              d.ID,
		AccommodationID: d.AccommodationID,
		Start:           d.StartDate.UTC(),
		End:             d.EndDate.UTC(),
		Price:           d.Price,
		Valid:           d.Valid,
		DateCreated:     d.DateCreated.UTC(),
	}
}
