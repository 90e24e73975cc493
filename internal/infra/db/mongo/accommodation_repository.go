package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccommodation "bookstay/internal/domain/accommodation"
)

type AccommodationRepository struct {
	col *mongo.Collection
}

func NewAccommodationRepository(db *mongo.Database) *AccommodationRepository {
	return &AccommodationRepository{col: db.Collection("accommodations")}
}

func (r *AccommodationRepository) ByAccommodationID(ctx context.Context, id string) (*domainaccommodation.Accommodation, error) {
	var doc accommodationDocument
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	acc := doc.toDomain()
	return &acc, nil
}

func (r *AccommodationRepository) Upsert(ctx context.Context, acc *domainaccommodation.Accommodation) error {
	doc := newAccommodationDocument(acc)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *AccommodationRepository) UpdateOwnerUsername(ctx context.Context, oldUsername, newUsername string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"ownerUsername": oldUsername},
		bson.M{"$set": bson.M{"ownerUsername": newUsername}},
	)
	return err
}

func (r *AccommodationRepository) ByOwner(ctx context.Context, username string) ([]domainaccommodation.Accommodation, error) {
	cursor, err := r.col.Find(ctx, bson.M{"ownerUsername": username})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	owned := make([]domainaccommodation.Accommodation, 0)
	for cursor.Next(ctx) {
		var doc accommodationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		owned = append(owned, doc.toDomain())
	}
	return owned, cursor.Err()
}

func (r *AccommodationRepository) RemoveByOwner(ctx context.Context, username string) ([]string, error) {
	owned, err := r.ByOwner(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(owned) == 0 {
		return nil, nil
	}
	removed := make([]string, 0, len(owned))
	for _, acc := range owned {
		removed = append(removed, acc.AccommodationID)
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": removed}}); err != nil {
		return nil, err
	}
	return removed, nil
}

type accommodationDocument struct {
	ID                 string `bson:"_id"`
	OwnerUsername      string `bson:"ownerUsername"`
	Location           string `bson:"location"`
	MinCapacity        int    `bson:"minCapacity"`
	MaxCapacity        int    `bson:"maxCapacity"`
	ConfirmationNeeded bool   `bson:"confirmationNeeded"`
}

func newAccommodationDocument(acc *domainaccommodation.Accommodation) accommodationDocument {
	return accommodationDocument{
		ID:                 acc.AccommodationID,
		OwnerUsername:      acc.OwnerUsername,
		Location:           acc.Location,
		MinCapacity:        acc.MinCapacity,
		MaxCapacity:        acc.MaxCapacity,
		ConfirmationNeeded: acc.ConfirmationNeeded,
	}
}

func (d accommodationDocument) toDomain() domainaccommodation.Accommodation {
	return domainaccommodation.Accommodation{
		AccommodationID:    d.ID,
		OwnerUsername:      d.OwnerUsername,
		Location:           d.Location,
		MinCapacity:        d.MinCapacity,
		MaxCapacity:        d.MaxCapacity,
		ConfirmationNeeded: d.ConfirmationNeeded,
	}
}
