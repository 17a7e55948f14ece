package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/internal/domain/repository"
)

// WatchHistoryLimit caps the number of entries kept per user.
const WatchHistoryLimit = 200

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.WatchHistory == nil {
		u.WatchHistory = []primitive.ObjectID{}
	}
	u.CreatedAt, u.UpdatedAt = now, now

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return mapErr(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	u := &entity.User{}
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	or := bson.A{}
	if s := strings.ToLower(strings.TrimSpace(username)); s != "" {
		or = append(or, bson.D{{Key: "username", Value: s}})
	}
	if s := strings.ToLower(strings.TrimSpace(email)); s != "" {
		or = append(or, bson.D{{Key: "email", Value: s}})
	}
	if len(or) == 0 {
		return nil, repository.ErrNotFound
	}
	u := &entity.User{}
	if err := r.coll.FindOne(ctx, bson.D{{Key: "$or", Value: or}}).Decode(u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, f repository.UserFields) (*entity.User, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if f.FullName != nil {
		set = append(set, bson.E{Key: "fullName", Value: *f.FullName})
	}
	if f.Email != nil {
		set = append(set, bson.E{Key: "email", Value: strings.ToLower(strings.TrimSpace(*f.Email))})
	}
	if f.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *f.Avatar})
	}
	if f.CoverImage != nil {
		set = append(set, bson.E{Key: "coverImage", Value: *f.CoverImage})
	}
	if f.Password != nil {
		set = append(set, bson.E{Key: "password", Value: *f.Password})
	}

	u := &entity.User{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(u)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.updateOne(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "refreshToken", Value: token}}}})
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.D{{Key: "$unset", Value: bson.D{{Key: "refreshToken", Value: ""}}}})
}

func (r *UserRepository) AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, watchHistoryPushUpdate(videoID, WatchHistoryLimit))
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) RemoveFromWatchHistories(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "watchHistory", Value: videoID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "watchHistory", Value: videoID}}}},
	)
	return mapErr(err)
}

func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*entity.ChannelProfile, error) {
	cur, err := r.coll.Aggregate(ctx, ChannelProfilePipeline(username, viewer))
	if err != nil {
		return nil, err
	}
	var out []entity.ChannelProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &out[0], nil
}

func (r *UserRepository) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]entity.VideoWithOwner, error) {
	cur, err := r.coll.Aggregate(ctx, WatchHistoryPipeline(id))
	if err != nil {
		return nil, err
	}
	var out []struct {
		WatchHistory []entity.VideoWithOwner `bson:"watchHistory"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	if out[0].WatchHistory == nil {
		return []entity.VideoWithOwner{}, nil
	}
	return out[0].WatchHistory, nil
}

func (r *UserRepository) Each(ctx context.Context, fn func(*entity.User) error) error {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return err
	}
	defer func() { _ = cur.Close(ctx) }()
	for cur.Next(ctx) {
		u := &entity.User{}
		if err := cur.Decode(u); err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (r *UserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.D) error {
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
