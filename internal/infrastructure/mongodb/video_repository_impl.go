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

type VideoRepository struct {
	coll *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{coll: db.Collection(VideosCollection)}
}

func (r *VideoRepository) Create(ctx context.Context, v *entity.Video) error {
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	res, err := r.coll.InsertOne(ctx, v)
	if err != nil {
		return mapErr(err)
	}
	v.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Video, error) {
	v := &entity.Video{}
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(v); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (r *VideoRepository) Update(ctx context.Context, id primitive.ObjectID, f repository.VideoFields) (*entity.Video, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if f.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *f.Title})
	}
	if f.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *f.Description})
	}
	if f.Thumbnail != nil {
		set = append(set, bson.E{Key: "thumbnail", Value: *f.Thumbnail})
	}
	if f.IsPublished != nil {
		set = append(set, bson.E{Key: "isPublished", Value: *f.IsPublished})
	}
	v := &entity.Video{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(v); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

// TogglePublished flips isPublished on the video owned by owner.
func (r *VideoRepository) TogglePublished(ctx context.Context, id, owner primitive.ObjectID) (*entity.Video, error) {
	v := &entity.Video{}
	filter := bson.D{{Key: "_id", Value: id}, {Key: "owner", Value: owner}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, filter, togglePublishUpdate(time.Now().UTC()), opts).Decode(v); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
	return mapErr(err)
}

func (r *VideoRepository) List(ctx context.Context, q entity.VideoQuery) (*entity.VideoPage, error) {
	cur, err := r.coll.Aggregate(ctx, VideoListPipeline(q))
	if err != nil {
		return nil, err
	}
	var out []struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Videos []entity.VideoWithOwner `bson:"videos"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	var (
		total  int64
		videos []entity.VideoWithOwner
	)
	if len(out) > 0 {
		if len(out[0].Metadata) > 0 {
			total = out[0].Metadata[0].Total
		}
		videos = out[0].Videos
	}
	return entity.NewVideoPage(videos, total, q.Page, q.Limit), nil
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
