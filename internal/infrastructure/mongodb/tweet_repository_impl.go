package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/internal/domain/repository"
)

type TweetRepository struct {
	coll *mongo.Collection
}

func NewTweetRepository(db *mongo.Database) *TweetRepository {
	return &TweetRepository{coll: db.Collection(TweetsCollection)}
}

func (r *TweetRepository) Create(ctx context.Context, t *entity.Tweet) error {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	res, err := r.coll.InsertOne(ctx, t)
	if err != nil {
		return mapErr(err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *TweetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Tweet, error) {
	t := &entity.Tweet{}
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(t); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *TweetRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entity.Tweet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{{Key: "owner", Value: owner}}, opts)
	if err != nil {
		return nil, err
	}
	out := []entity.Tweet{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TweetRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entity.Tweet, error) {
	t := &entity.Tweet{}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(t); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

func (r *TweetRepository) Delete(ctx context.Context, id primitive.ObjectID) (*entity.Tweet, error) {
	t := &entity.Tweet{}
	if err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(t); err != nil {
		return nil, mapErr(err)
	}
	return t, nil
}

var _ repository.TweetRepository = (*TweetRepository)(nil)
