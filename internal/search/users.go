package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/auth_service/internal/models"
)

// UserIndex mirrors the user directory into elasticsearch so the directory
// can be searched by username or full name. A nil UserIndex is a no-op for
// indexing; Search on a nil index is the caller's responsibility to avoid.
type UserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewUserIndex(url, user, password, index string) (*UserIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return &UserIndex{ES: client, Index: index}, nil
}

func (i *UserIndex) IndexUser(ctx context.Context, u models.PublicUser) error {
	if i == nil {
		return nil
	}

	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("index user: marshal: %w", err)
	}

	res, err := i.ES.Index(
		i.Index,
		bytes.NewReader(body),
		i.ES.Index.WithDocumentID(u.Username),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index user: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index user: %s", res.Status())
	}
	return nil
}

func (i *UserIndex) SearchUsers(ctx context.Context, query string, size int) ([]models.PublicUser, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"username^2", "full_name"},
				"type":   "phrase_prefix",
			},
		},
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("search users: encode query: %w", err)
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.PublicUser `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("search users: decode: %w", err)
	}

	users := make([]models.PublicUser, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		users[n] = hit.Source
	}
	return users, nil
}
