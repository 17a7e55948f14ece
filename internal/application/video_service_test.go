package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/infrastructure/memory"
)

func newVideoFixture() (*VideoService, *memory.VideoRepository, *memory.UserRepository) {
	videos := memory.NewVideoRepository()
	users := memory.NewUserRepository()
	return NewVideoService(videos, users, &memory.Uploader{BaseURL: "https://cdn.test/"}, nil), videos, users
}

func publish(t *testing.T, svc *VideoService, owner primitive.ObjectID, title string) primitive.ObjectID {
	t.Helper()
	v, err := svc.Publish(context.Background(), owner, PublishVideoInput{
		Title:       title,
		Description: "about " + title,
		Duration:    12.5,
		VideoFile:   upload("clip.mp4"),
		Thumbnail:   upload("thumb.jpg"),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	return v.ID
}

func TestBuildVideoQuery(t *testing.T) {
	caller := primitive.NewObjectID()

	q, err := BuildVideoQuery(ListVideosInput{Page: "0", Limit: "500", SortBy: "password", SortType: "asc", Caller: caller})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != 1 || q.Limit != MaxPageLimit || q.SortBy != "createdAt" || q.SortDir != 1 || !q.OnlyPublished {
		t.Fatalf("unexpected query: %+v", q)
	}

	q, err = BuildVideoQuery(ListVideosInput{Page: "2", Limit: "abc", SortBy: "views", SortType: "-1", UserID: caller.Hex(), Caller: caller})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != 2 || q.Limit != DefaultPageLimit || q.SortBy != "views" || q.SortDir != -1 {
		t.Fatalf("unexpected query: %+v", q)
	}
	if q.Owner != caller || q.OnlyPublished {
		t.Fatal("own channel listing should include drafts")
	}

	q, err = BuildVideoQuery(ListVideosInput{Page: "100000000000000000", Limit: "100"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != math.MaxInt64/100 || q.Skip() < 0 {
		t.Fatalf("oversized page should be clamped: page=%d skip=%d", q.Page, q.Skip())
	}

	if _, err := BuildVideoQuery(ListVideosInput{UserID: "nope"}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("invalid user id: got %v", err)
	}
}

func TestListVideosPastLastPage(t *testing.T) {
	svc, _, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	publish(t, svc, owner, "a")

	_, err := svc.List(context.Background(), ListVideosInput{Page: "100000000000000000", Limit: "100"})
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("page past the end: got %v", err)
	}
}

func TestPublishValidation(t *testing.T) {
	svc, _, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()

	cases := []struct {
		name string
		in   PublishVideoInput
		want error
	}{
		{"blank title", PublishVideoInput{Title: " ", Description: "d", VideoFile: upload("a.mp4"), Thumbnail: upload("t.jpg")}, ErrMissingFields},
		{"no video", PublishVideoInput{Title: "t", Description: "d", Thumbnail: upload("t.jpg")}, ErrVideoFileRequired},
		{"no thumbnail", PublishVideoInput{Title: "t", Description: "d", VideoFile: upload("a.mp4")}, ErrThumbnailRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Publish(ctx, owner, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestListVideos(t *testing.T) {
	svc, videos, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()

	if _, err := svc.List(ctx, ListVideosInput{}); !errors.Is(err, ErrNoVideos) {
		t.Fatalf("empty listing: got %v", err)
	}

	publish(t, svc, owner, "a")
	draft := publish(t, svc, owner, "b")
	if _, err := svc.TogglePublish(ctx, draft, owner); err != nil {
		t.Fatal(err)
	}

	page, err := svc.List(ctx, ListVideosInput{UserID: owner.Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalVideos != 1 || !videos.LastQuery.OnlyPublished {
		t.Fatalf("other callers should only see published videos: %+v", page)
	}

	page, err = svc.List(ctx, ListVideosInput{UserID: owner.Hex(), Caller: owner})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalVideos != 2 {
		t.Fatalf("owner should see drafts, got %d", page.TotalVideos)
	}
}

func TestGetVideoRecordsView(t *testing.T) {
	svc, _, users := newVideoFixture()
	owner := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	ctx := context.Background()
	id := publish(t, svc, owner, "a")

	v, err := svc.Get(ctx, id, viewer)
	if err != nil {
		t.Fatal(err)
	}
	if v.Views != 1 {
		t.Fatalf("expected 1 view, got %d", v.Views)
	}
	if h := users.History[viewer]; len(h) != 1 || h[0] != id {
		t.Fatalf("video should be pushed onto watch history: %v", h)
	}

	if _, err := svc.Get(ctx, primitive.NewObjectID(), viewer); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("missing video: got %v", err)
	}

	if _, err := svc.TogglePublish(ctx, id, owner); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, id, viewer); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("draft should be hidden from other users: got %v", err)
	}
	if _, err := svc.Get(ctx, id, owner); err != nil {
		t.Fatalf("owner should see the draft: %v", err)
	}
}

func TestUpdateVideoOwnership(t *testing.T) {
	svc, _, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()
	id := publish(t, svc, owner, "a")

	in := UpdateVideoInput{Title: "new", Description: "desc"}
	if _, err := svc.Update(ctx, id, primitive.NewObjectID(), in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non owner: got %v", err)
	}
	if _, err := svc.Update(ctx, id, owner, UpdateVideoInput{Title: "new"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing description: got %v", err)
	}

	before, _ := svc.Videos.GetByID(ctx, id)
	in.Thumbnail = upload("new.png")
	v, err := svc.Update(ctx, id, owner, in)
	if err != nil {
		t.Fatal(err)
	}
	if v.Title != "new" || v.Thumbnail == before.Thumbnail {
		t.Fatalf("update not applied: %+v", v)
	}
}

func TestDeleteVideo(t *testing.T) {
	svc, _, users := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()
	id := publish(t, svc, owner, "a")

	if err := svc.Delete(ctx, id, primitive.NewObjectID()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non owner: got %v", err)
	}
	if err := svc.Delete(ctx, id, owner); err != nil {
		t.Fatal(err)
	}
	if len(users.Removed) != 1 || users.Removed[0] != id {
		t.Fatalf("video should be pulled from watch histories: %v", users.Removed)
	}
	if err := svc.Delete(ctx, id, owner); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestTogglePublish(t *testing.T) {
	svc, _, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()
	id := publish(t, svc, owner, "a")

	published, err := svc.TogglePublish(ctx, id, owner)
	if err != nil || published {
		t.Fatalf("first toggle should unpublish: %v %v", published, err)
	}
	published, err = svc.TogglePublish(ctx, id, owner)
	if err != nil || !published {
		t.Fatalf("second toggle should publish: %v %v", published, err)
	}
	if _, err := svc.TogglePublish(ctx, id, primitive.NewObjectID()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non owner: got %v", err)
	}
}

func TestTogglePublishConcurrent(t *testing.T) {
	svc, videos, _ := newVideoFixture()
	owner := primitive.NewObjectID()
	ctx := context.Background()
	id := publish(t, svc, owner, "a")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.TogglePublish(ctx, id, owner); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	v, err := videos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsPublished {
		t.Fatal("an even number of toggles should leave the video published")
	}
}
