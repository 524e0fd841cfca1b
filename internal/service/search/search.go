package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/contest_platform/internal/models"
)

// Indexer mirrors contests into the search index. A nil client turns both
// indexing and searching off, which is how broker-less local setups and the
// test suite run.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.ES != nil
}

func (i *Indexer) IndexContest(ctx context.Context, contest *models.Contest) error {
	if !i.Enabled() {
		return nil
	}

	doc, err := json.Marshal(contest)
	if err != nil {
		return err
	}

	res, err := i.ES.Index(
		i.Index,
		bytes.NewReader(doc),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(fmt.Sprint(contest.ID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.Status())
	}
	return nil
}

func (i *Indexer) Search(ctx context.Context, query string, from, size int) (int64, []models.Contest, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 }             `json:"total"`
			Hits  []struct{ Source models.Contest } `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	contests := make([]models.Contest, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		contests[i] = hit.Source
	}
	return r.Hits.Total.Value, contests, nil
}
