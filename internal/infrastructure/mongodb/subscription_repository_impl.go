package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/internal/domain/repository"
)

type SubscriptionRepository struct {
	coll *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{coll: db.Collection(SubscriptionsCollection)}
}

func (r *SubscriptionRepository) Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*entity.Subscription, error) {
	s := &entity.Subscription{}
	filter := bson.D{{Key: "subscriber", Value: subscriber}, {Key: "channel", Value: channel}}
	if err := r.coll.FindOne(ctx, filter).Decode(s); err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *entity.Subscription) error {
	s.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return mapErr(err)
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return r.join(ctx, subscriptionJoinPipeline("channel", channel, "subscriber"))
}

func (r *SubscriptionRepository) Channels(ctx context.Context, subscriber primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return r.join(ctx, subscriptionJoinPipeline("subscriber", subscriber, "channel"))
}

func (r *SubscriptionRepository) join(ctx context.Context, p mongo.Pipeline) ([]entity.SubscriptionEntry, error) {
	cur, err := r.coll.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}
	out := []entity.SubscriptionEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
