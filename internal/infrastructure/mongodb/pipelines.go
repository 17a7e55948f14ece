package mongodb

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

// ownerSummaryProjection is the user shape embedded as a video owner.
var ownerSummaryProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "fullName", Value: 1},
	{Key: "username", Value: 1},
	{Key: "avatar", Value: 1},
}

// lookupOwnerStages joins the owner field of a video with its user summary.
func lookupOwnerStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: ownerSummaryProjection}},
			}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "owner", Value: bson.D{{Key: "$first", Value: "$owner"}}},
		}}},
	}
}

// VideoListPipeline builds the search/listing aggregation. The result is a
// single document {metadata: [{total}], videos: [...]} produced by $facet.
// Callers are expected to pass a normalized query (page >= 1, limit >= 1).
func VideoListPipeline(q entity.VideoQuery) mongo.Pipeline {
	pattern := regexp.QuoteMeta(strings.TrimSpace(q.Search))
	and := bson.A{
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: primitive.Regex{Pattern: pattern, Options: "i"}}},
			bson.D{{Key: "description", Value: primitive.Regex{Pattern: pattern, Options: "i"}}},
		}}},
	}
	if !q.Owner.IsZero() {
		and = append(and, bson.D{{Key: "owner", Value: q.Owner}})
	}
	if q.OnlyPublished {
		and = append(and, bson.D{{Key: "isPublished", Value: true}})
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	dir := q.SortDir
	if dir != 1 {
		dir = -1
	}
	sort := bson.D{{Key: sortBy, Value: dir}}
	if sortBy != "_id" {
		// tie-breaker keeps pages stable
		sort = append(sort, bson.E{Key: "_id", Value: dir})
	}

	window := bson.A{
		bson.D{{Key: "$skip", Value: q.Skip()}},
		bson.D{{Key: "$limit", Value: q.Limit}},
	}
	for _, st := range lookupOwnerStages() {
		window = append(window, st)
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$and", Value: and}}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$facet", Value: bson.D{
			{Key: "metadata", Value: bson.A{bson.D{{Key: "$count", Value: "total"}}}},
			{Key: "videos", Value: window},
		}}},
	}
}

// ChannelProfilePipeline builds the channel lookup for username as seen by viewer.
// A zero viewer is never subscribed.
func ChannelProfilePipeline(username string, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: strings.ToLower(strings.TrimSpace(username))}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: SubscriptionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "channel"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: SubscriptionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribedTo"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
				{Key: "then", Value: true},
				{Key: "else", Value: false},
			}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "fullName", Value: 1},
			{Key: "username", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "email", Value: 1},
		}}},
	}
}

// WatchHistoryPipeline joins a user's watch history with videos and their
// owners. The $map over the original id list keeps most-recent-first order
// and drops ids whose video no longer exists.
func WatchHistoryPipeline(userID primitive.ObjectID) mongo.Pipeline {
	videoStages := bson.A{}
	for _, st := range lookupOwnerStages() {
		videoStages = append(videoStages, st)
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: userID}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: VideosCollection},
			{Key: "localField", Value: "watchHistory"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videos"},
			{Key: "pipeline", Value: videoStages},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: bson.D{{Key: "$map", Value: bson.D{
					{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
					{Key: "as", Value: "vid"},
					{Key: "in", Value: bson.D{{Key: "$first", Value: bson.D{{Key: "$filter", Value: bson.D{
						{Key: "input", Value: "$videos"},
						{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$this._id", "$$vid"}}}},
					}}}}}},
				}}}},
				{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", nil}}}},
			}}}},
		}}},
	}
}

// subscriptionJoinPipeline lists subscriptions matching field == id joined
// with the user referenced by other.
func subscriptionJoinPipeline(field string, id primitive.ObjectID, other string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: field, Value: id}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: other},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: ownerSummaryProjection}},
			}},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.D{
			{Key: "user", Value: 1},
			{Key: "subscribedAt", Value: "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "subscribedAt", Value: -1}}}},
	}
}

// watchHistoryPushUpdate moves videoID to the front of watchHistory, keeping
// at most limit entries.
func watchHistoryPushUpdate(videoID primitive.ObjectID, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$concatArrays", Value: bson.A{
					bson.A{videoID},
					bson.D{{Key: "$filter", Value: bson.D{
						{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
						{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", videoID}}}},
					}}},
				}}},
				limit,
			}}}},
		}}},
	}
}

// togglePublishUpdate flips isPublished server-side so concurrent toggles
// never read a stale value.
func togglePublishUpdate(now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isPublished", Value: bson.D{{Key: "$not", Value: bson.A{"$isPublished"}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}
}
