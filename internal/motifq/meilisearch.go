package motifq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"log/slog"
)

// MeilisearchConfig captures connection settings for optional catalog
// search synchronization.
type MeilisearchConfig struct {
	Host   string
	APIKey string
	Index  string
}

type meilisearchTarget struct {
	client *meilisearch.Client
	index  *meilisearch.Index
	logger *slog.Logger
}

func newMeilisearchTarget(ctx context.Context, cfg MeilisearchConfig, logger *slog.Logger) (*meilisearchTarget, error) {
	host := strings.TrimSpace(cfg.Host)
	indexName := strings.TrimSpace(cfg.Index)
	if indexName == "" {
		return nil, nil
	}
	if host == "" {
		host = "http://localhost:7700"
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: strings.TrimSpace(cfg.APIKey),
	})
	index := client.Index(indexName)

	t := &meilisearchTarget{client: client, index: index, logger: logger}
	if err := t.ensureIndex(ctx, indexName); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *meilisearchTarget) ensureIndex(ctx context.Context, indexName string) error {
	_, err := t.client.GetIndex(indexName)
	if err != nil {
		var meiliErr *meilisearch.Error
		if errors.As(err, &meiliErr) && meiliErr.MeilisearchApiError.Code == "index_not_found" {
			task, createErr := t.client.CreateIndex(&meilisearch.IndexConfig{Uid: indexName})
			if createErr != nil {
				return createErr
			}
			if err := t.waitForTask(ctx, task); err != nil {
				return err
			}
		} else {
			return err
		}
	}

	desiredSearchable := []string{"name", "description"}
	if err := t.ensureSearchableAttributes(ctx, desiredSearchable); err != nil {
		return err
	}

	desiredFilterable := []string{"residue_count"}
	if err := t.ensureFilterableAttributes(ctx, desiredFilterable); err != nil {
		return err
	}

	return nil
}

func (t *meilisearchTarget) ensureSearchableAttributes(ctx context.Context, desired []string) error {
	currentPtr, err := t.index.GetSearchableAttributes()
	if err != nil {
		return err
	}
	if stringSlicesEqual(derefSlice(currentPtr), desired) {
		return nil
	}
	task, err := t.index.UpdateSearchableAttributes(&desired)
	if err != nil {
		return err
	}
	return t.waitForTask(ctx, task)
}

func (t *meilisearchTarget) ensureFilterableAttributes(ctx context.Context, desired []string) error {
	currentPtr, err := t.index.GetFilterableAttributes()
	if err != nil {
		return err
	}
	if stringSlicesEqual(derefSlice(currentPtr), desired) {
		return nil
	}
	task, err := t.index.UpdateFilterableAttributes(&desired)
	if err != nil {
		return err
	}
	return t.waitForTask(ctx, task)
}

func (t *meilisearchTarget) waitForTask(ctx context.Context, task *meilisearch.TaskInfo) error {
	if task == nil || task.TaskUID == 0 {
		return nil
	}
	_, err := t.client.WaitForTask(task.TaskUID, meilisearch.WaitParams{Context: ctx})
	return err
}

// ApplyMotifChanges satisfies the MotifSyncTarget interface.
func (t *meilisearchTarget) ApplyMotifChanges(ctx context.Context, changes MotifChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	if len(changes.Upserts) > 0 {
		docs := makeMeiliDocuments(changes.Upserts)
		task, err := t.index.AddDocuments(docs)
		if err != nil {
			return err
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	if len(changes.Deletions) > 0 {
		task, err := t.index.DeleteDocuments(changes.Deletions)
		if err != nil {
			return err
		}
		if err := t.waitForTask(ctx, task); err != nil {
			return err
		}
	}

	return nil
}

// MotifHit is one catalog search result.
type MotifHit struct {
	ID           string
	Name         string
	Description  string
	URL          string
	ResidueCount int
}

// Search queries the motif index by name and description.
func (t *meilisearchTarget) Search(ctx context.Context, query string, limit int64) ([]MotifHit, error) {
	if limit <= 0 {
		limit = 20
	}
	resp, err := t.index.Search(query, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search motifs: %w", err)
	}

	hits := make([]MotifHit, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("decode search hit: %w", err)
		}
		var doc meiliMotifDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode search hit: %w", err)
		}
		hits = append(hits, MotifHit{
			ID:           doc.ID,
			Name:         doc.Name,
			Description:  doc.Description,
			URL:          doc.URL,
			ResidueCount: doc.ResidueCount,
		})
	}
	return hits, nil
}

func makeMeiliDocuments(motifs []SavedMotif) []meiliMotifDocument {
	docs := make([]meiliMotifDocument, 0, len(motifs))
	for _, m := range motifs {
		docs = append(docs, meiliMotifDocument{
			ID:           m.ID,
			Name:         m.Name,
			Description:  m.Description,
			URL:          m.URL,
			ResidueCount: m.ResidueCount,
			CreatedAt:    m.CreatedAt.Unix(),
		})
	}
	return docs
}

func derefSlice(ptr *[]string) []string {
	if ptr == nil {
		return nil
	}
	return *ptr
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// meiliMotifDocument represents a saved motif stored in Meilisearch.
type meiliMotifDocument struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	ResidueCount int    `json:"residue_count"`
	CreatedAt    int64  `json:"created_at"`
}
