package entity

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a published (or draft) upload owned by a user.
// Duration is expressed in seconds.
type Video struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	VideoFile   string             `json:"videoFile" bson:"videoFile"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OwnedBy reports whether uid owns the video.
func (v *Video) OwnedBy(uid primitive.ObjectID) bool {
	return v != nil && !uid.IsZero() && v.Owner == uid
}

// VideoWithOwner is a video whose owner reference was joined with the users collection.
type VideoWithOwner struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	VideoFile   string             `json:"videoFile" bson:"videoFile"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Duration    float64            `json:"duration" bson:"duration"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"isPublished" bson:"isPublished"`
	Owner       *UserSummary       `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// VideoQuery holds the filters, sort and paging for a video listing.
type VideoQuery struct {
	Page          int64
	Limit         int64
	Search        string
	SortBy        string
	SortDir       int
	Owner         primitive.ObjectID
	OnlyPublished bool
}

// Skip is the number of documents before the page, saturating at the
// largest whole page that fits in an int64.
func (q VideoQuery) Skip() int64 {
	return skipFor(q.Page, q.Limit)
}

func skipFor(page, limit int64) int64 {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt64/limit-1 {
		return (math.MaxInt64/limit - 1) * limit
	}
	return (page - 1) * limit
}

// VideoPage is a page of videos plus pagination metadata.
type VideoPage struct {
	Videos        []VideoWithOwner `json:"videos"`
	TotalVideos   int64            `json:"totalVideos"`
	Limit         int64            `json:"limit"`
	Page          int64            `json:"page"`
	TotalPages    int64            `json:"totalPages"`
	PagingCounter int64            `json:"pagingCounter"`
	HasPrevPage   bool             `json:"hasPrevPage"`
	HasNextPage   bool             `json:"hasNextPage"`
	PrevPage      *int64           `json:"prevPage"`
	NextPage      *int64           `json:"nextPage"`
}

// NewVideoPage computes pagination metadata for a window of videos.
func NewVideoPage(videos []VideoWithOwner, total, page, limit int64) *VideoPage {
	if videos == nil {
		videos = []VideoWithOwner{}
	}
	p := &VideoPage{
		Videos:        videos,
		TotalVideos:   total,
		Limit:         limit,
		Page:          page,
		PagingCounter: skipFor(page, limit) + 1,
	}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	if page > 1 {
		prev := page - 1
		p.HasPrevPage = true
		p.PrevPage = &prev
	}
	if page < p.TotalPages {
		next := page + 1
		p.HasNextPage = true
		p.NextPage = &next
	}
	return p
}
