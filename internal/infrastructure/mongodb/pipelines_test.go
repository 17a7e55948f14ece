package mongodb

import (
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

// stage returns the body of the first stage named op.
func stage(t *testing.T, p mongo.Pipeline, op string) bson.D {
	t.Helper()
	for _, st := range p {
		if len(st) == 1 && st[0].Key == op {
			body, ok := st[0].Value.(bson.D)
			if !ok {
				t.Fatalf("stage %s has unexpected body %T", op, st[0].Value)
			}
			return body
		}
	}
	t.Fatalf("stage %s not found", op)
	return nil
}

func field(t *testing.T, d bson.D, key string) interface{} {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %s not found in %v", key, d)
	return nil
}

func TestVideoListPipelineMatch(t *testing.T) {
	owner := primitive.NewObjectID()
	p := VideoListPipeline(entity.VideoQuery{
		Page: 1, Limit: 10, Search: "go (1.22)", Owner: owner, OnlyPublished: true,
	})

	and := field(t, stage(t, p, "$match"), "$and").(bson.A)
	if len(and) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(and))
	}
	or := field(t, and[0].(bson.D), "$or").(bson.A)
	re := field(t, or[0].(bson.D), "title").(primitive.Regex)
	if re.Pattern != `go \(1\.22\)` || re.Options != "i" {
		t.Fatalf("unexpected regex: %+v", re)
	}
	if got := field(t, and[1].(bson.D), "owner"); got != owner {
		t.Fatalf("unexpected owner filter: %v", got)
	}
	if got := field(t, and[2].(bson.D), "isPublished"); got != true {
		t.Fatalf("unexpected publish filter: %v", got)
	}
}

func TestVideoListPipelineNoOwnerFilter(t *testing.T) {
	p := VideoListPipeline(entity.VideoQuery{Page: 1, Limit: 10})
	and := field(t, stage(t, p, "$match"), "$and").(bson.A)
	if len(and) != 1 {
		t.Fatalf("expected only the text condition, got %d", len(and))
	}
}

func TestVideoListPipelineSortAndWindow(t *testing.T) {
	p := VideoListPipeline(entity.VideoQuery{Page: 3, Limit: 20, SortBy: "views", SortDir: 1})

	sort := stage(t, p, "$sort")
	if len(sort) != 2 || sort[0].Key != "views" || sort[0].Value != 1 || sort[1].Key != "_id" {
		t.Fatalf("unexpected sort: %v", sort)
	}

	facet := stage(t, p, "$facet")
	window := field(t, facet, "videos").(bson.A)
	if skip := field(t, window[0].(bson.D), "$skip"); skip != int64(40) {
		t.Fatalf("unexpected skip: %v", skip)
	}
	if limit := field(t, window[1].(bson.D), "$limit"); limit != int64(20) {
		t.Fatalf("unexpected limit: %v", limit)
	}
	if len(window) != 4 {
		t.Fatalf("expected skip, limit and owner join stages, got %d", len(window))
	}
}

func TestVideoListPipelineHugePageSkip(t *testing.T) {
	p := VideoListPipeline(entity.VideoQuery{Page: math.MaxInt64, Limit: 100})
	window := field(t, stage(t, p, "$facet"), "videos").(bson.A)
	skip, ok := field(t, window[0].(bson.D), "$skip").(int64)
	if !ok || skip < 0 {
		t.Fatalf("skip must be a non-negative int64, got %v", skip)
	}
}

func TestVideoListPipelineDefaultSortDescending(t *testing.T) {
	p := VideoListPipeline(entity.VideoQuery{Page: 1, Limit: 10, SortDir: 0})
	sort := stage(t, p, "$sort")
	if sort[0].Key != "createdAt" || sort[0].Value != -1 {
		t.Fatalf("unexpected default sort: %v", sort)
	}
}

func TestChannelProfilePipeline(t *testing.T) {
	viewer := primitive.NewObjectID()
	p := ChannelProfilePipeline("  JohnDoe ", viewer)

	if got := field(t, stage(t, p, "$match"), "username"); got != "johndoe" {
		t.Fatalf("username should be normalized, got %v", got)
	}
	added := stage(t, p, "$addFields")
	cond := field(t, field(t, added, "isSubscribed").(bson.D), "$cond").(bson.D)
	in := field(t, field(t, cond, "if").(bson.D), "$in").(bson.A)
	if in[0] != viewer || in[1] != "$subscribers.subscriber" {
		t.Fatalf("unexpected $in: %v", in)
	}
	project := stage(t, p, "$project")
	for _, k := range []string{"fullName", "username", "subscribersCount", "channelsSubscribedToCount", "isSubscribed", "avatar", "coverImage", "email"} {
		field(t, project, k)
	}
}

func TestWatchHistoryPipeline(t *testing.T) {
	uid := primitive.NewObjectID()
	p := WatchHistoryPipeline(uid)
	if got := field(t, stage(t, p, "$match"), "_id"); got != uid {
		t.Fatalf("unexpected match: %v", got)
	}
	lookup := stage(t, p, "$lookup")
	if field(t, lookup, "from") != VideosCollection || field(t, lookup, "localField") != "watchHistory" {
		t.Fatalf("unexpected lookup: %v", lookup)
	}
	if nested := field(t, lookup, "pipeline").(bson.A); len(nested) != 2 {
		t.Fatalf("expected owner join in nested pipeline, got %d stages", len(nested))
	}
}

func TestSubscriptionJoinPipeline(t *testing.T) {
	ch := primitive.NewObjectID()
	p := subscriptionJoinPipeline("channel", ch, "subscriber")
	if got := field(t, stage(t, p, "$match"), "channel"); got != ch {
		t.Fatalf("unexpected match: %v", got)
	}
	if got := field(t, stage(t, p, "$lookup"), "localField"); got != "subscriber" {
		t.Fatalf("unexpected join field: %v", got)
	}
}

func TestWatchHistoryPushUpdateLimit(t *testing.T) {
	vid := primitive.NewObjectID()
	p := watchHistoryPushUpdate(vid, 5)
	set := stage(t, p, "$set")
	slice := field(t, field(t, set, "watchHistory").(bson.D), "$slice").(bson.A)
	if slice[1] != 5 {
		t.Fatalf("unexpected limit: %v", slice[1])
	}
	concat := field(t, slice[0].(bson.D), "$concatArrays").(bson.A)
	if head := concat[0].(bson.A); head[0] != vid {
		t.Fatalf("video should be pushed to the front, got %v", head)
	}
}

func TestTogglePublishUpdateNegatesStoredValue(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := stage(t, togglePublishUpdate(now), "$set")
	not := field(t, field(t, set, "isPublished").(bson.D), "$not").(bson.A)
	if len(not) != 1 || not[0] != "$isPublished" {
		t.Fatalf("isPublished should negate the stored field, got %v", not)
	}
	if got := field(t, set, "updatedAt"); got != now {
		t.Fatalf("unexpected updatedAt: %v", got)
	}
}
