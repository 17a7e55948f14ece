package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

// UsersIndexMapping is the mapping applied when the users index is created.
const UsersIndexMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "username":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "fullName":   {"type": "text"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "avatar":     {"type": "keyword", "index": false},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// UserHit is a user document returned by SearchUsers.
type UserHit struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func userDocument(u *entity.User) map[string]any {
	return map[string]any{
		"id":         u.ID.Hex(),
		"username":   u.Username,
		"fullName":   u.FullName,
		"email":      u.Email,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (s *UserService) searchEnabled() bool { return s.ES != nil && s.ESUsersIndex != "" }

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if !s.searchEnabled() {
		return nil
	}
	b, _ := json.Marshal(userDocument(u))
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID.Hex(), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID.Hex()).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.log().WithField("status", res.Status()).WithField("user_id", u.ID.Hex()).Warn("es index response error")
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// SearchUsers performs a multi_match search on username, full name and email.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]UserHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrMissingFields
	}
	if !s.searchEnabled() {
		return nil, ErrSearchUnavailable
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"username^3", "fullName^2", "email"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]UserHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// ReindexUsers makes sure the index exists and pushes every user into it.
// It returns the number of users indexed.
func (s *UserService) ReindexUsers(ctx context.Context) (int, error) {
	if !s.searchEnabled() {
		return 0, ErrSearchUnavailable
	}
	if err := helpers.EnsureIndex(ctx, s.ES, s.ESUsersIndex, UsersIndexMapping); err != nil {
		return 0, err
	}
	n, failed := 0, 0
	err := s.Repo.Each(ctx, func(u *entity.User) error {
		if err := s.indexUser(ctx, u); err != nil {
			failed++
			return nil
		}
		n++
		return nil
	})
	s.log().WithFields(logrus.Fields{"indexed": n, "failed": failed}).Info("users reindexed")
	return n, err
}
