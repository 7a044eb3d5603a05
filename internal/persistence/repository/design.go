package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type designDoc struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty"`
	Name         string                 `bson:"name"`
	Width        float64                `bson:"width"`
	Height       float64                `bson:"height"`
	Elements     []domain.DesignElement `bson:"elements"`
	ThumbnailURL string                 `bson:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt"`
}

func (d *designDoc) toDomain() *domain.Design {
	return &domain.Design{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Width:        d.Width,
		Height:       d.Height,
		Elements:     d.Elements,
		ThumbnailURL: d.ThumbnailURL,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type designRepository struct {
	db *mongo.Database
}

func NewDesignRepository(database *mongo.Database) domain.DesignRepository {
	return &designRepository{
		db: database,
	}
}

func (r *designRepository) collection() *mongo.Collection {
	return r.db.Collection(db.DesignsCollection)
}

func (r *designRepository) Create(ctx context.Context, design *domain.Design) (*domain.Design, error) {
	now := time.Now().UTC()

	doc := designDoc{
		ID:           primitive.NewObjectID(),
		Name:         design.Name,
		Width:        design.Width,
		Height:       design.Height,
		Elements:     design.Elements,
		ThumbnailURL: design.ThumbnailURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Elements == nil {
		doc.Elements = []domain.DesignElement{}
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *designRepository) FindAll(ctx context.Context, findOpts domain.FindOptions) ([]domain.Design, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	if findOpts.Limit > 0 {
		opts.SetLimit(findOpts.Limit)
	}
	if findOpts.Offset > 0 {
		opts.SetSkip(findOpts.Offset)
	}
	if findOpts.Summary {
		opts.SetProjection(bson.M{"elements": 0})
	}

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []designDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	designs := make([]domain.Design, 0, len(docs))
	for i := range docs {
		designs = append(designs, *docs[i].toDomain())
	}

	return designs, nil
}

func (r *designRepository) FindByID(ctx context.Context, id string) (*domain.Design, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var doc designDoc
	err = r.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDesignNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *designRepository) UpdateByID(ctx context.Context, id string, update domain.DesignUpdate) (*domain.Design, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Width != nil {
		set["width"] = *update.Width
	}
	if update.Height != nil {
		set["height"] = *update.Height
	}
	if update.Elements != nil {
		set["elements"] = update.Elements
	}
	if update.ThumbnailURL != nil {
		set["thumbnailUrl"] = *update.ThumbnailURL
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc designDoc
	err = r.collection().
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDesignNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *designRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrInvalidID
	}

	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}

	return res.DeletedCount > 0, nil
}

func (r *designRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	return err
}
