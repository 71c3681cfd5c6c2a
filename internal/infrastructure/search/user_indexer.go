// Package search keeps the public user directory in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// UserDocument is what the directory stores per user. Emails are not indexed.
type UserDocument struct {
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{es: es, index: index}
}

// usersMapping keeps user_name exact for lookups and name analyzed for search.
const usersMapping = `{
  "mappings": {
    "properties": {
      "name":       {"type": "text"},
      "user_name":  {"type": "keyword"},
      "avatar_url": {"type": "keyword", "index": false},
      "created_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the directory index with its mapping if it does not exist.
func (i *UserIndexer) EnsureIndex(ctx context.Context) error {
	if i == nil || i.es == nil || i.index == "" {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("es exists: %w", err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: i.index, Body: strings.NewReader(usersMapping)}.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("es create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}

// IndexUser upserts doc keyed by user name, which is unique and immutable here.
func (i *UserIndexer) IndexUser(ctx context.Context, doc UserDocument) error {
	if i == nil || i.es == nil || i.index == "" {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: doc.UserName, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}
