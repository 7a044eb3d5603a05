package repository

import (
	"context"
	"time"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	DesignID   primitive.ObjectID `bson:"designId"`
	AuthorName string             `bson:"authorName"`
	Text       string             `bson:"text"`
	Mentions   []domain.Mention   `bson:"mentions"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (c *commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         c.ID.Hex(),
		DesignID:   c.DesignID.Hex(),
		AuthorName: c.AuthorName,
		Text:       c.Text,
		Mentions:   c.Mentions,
		CreatedAt:  c.CreatedAt,
	}
}

type commentRepository struct {
	db *mongo.Database
}

func NewCommentRepository(database *mongo.Database) domain.CommentRepository {
	return &commentRepository{
		db: database,
	}
}

func (r *commentRepository) collection() *mongo.Collection {
	return r.db.Collection(db.CommentsCollection)
}

func (r *commentRepository) FindByDesignID(ctx context.Context, designID string) ([]domain.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(designID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection().Find(ctx, bson.M{"designId": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(docs))
	for i := range docs {
		comments = append(comments, *docs[i].toDomain())
	}

	return comments, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	designOID, err := primitive.ObjectIDFromHex(comment.DesignID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	doc := commentDoc{
		ID:         primitive.NewObjectID(),
		DesignID:   designOID,
		AuthorName: comment.AuthorName,
		Text:       comment.Text,
		Mentions:   comment.Mentions,
		CreatedAt:  time.Now().UTC(),
	}
	if doc.Mentions == nil {
		doc.Mentions = []domain.Mention{}
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *commentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "designId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	return err
}
