package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"fintrack/internal/core"
)

const (
	esTransactionIndex = "fintrack-transactions"
	esUserIndex        = "fintrack-users"

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

// Elastic is the Store backed by an Elasticsearch cluster. Transactions
// and users live in two indices with keyword mappings for the enum fields,
// so filter predicates become term/range clauses and the summary becomes a
// terms aggregation with a sum sub-aggregation.
type Elastic struct {
	es *elasticsearch.Client
}

// NewElastic connects to the given addresses, falling back to the
// ELASTICSEARCH_SERVICE_HOST/PORT environment (and then localhost:9200)
// when none are configured. Transient 5xx/429 responses are retried with
// exponential backoff.
func NewElastic(ctx context.Context, addresses ...string) (*Elastic, error) {
	if len(addresses) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200"
		}
		if address == "" {
			address = "localhost"
		}
		addresses = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}

	retryBackoff := backoff.NewExponentialBackOff()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     addresses,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	e := &Elastic{es: es}
	e.ensureIndex(ctx, esTransactionIndex, transactionMapping)
	e.ensureIndex(ctx, esUserIndex, userMapping)
	return e, nil
}

func (e *Elastic) Close() error { return nil }

const transactionMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "owner_id":       {"type": "keyword"},
      "amount_millis":  {"type": "long"},
      "type":           {"type": "keyword"},
      "category":       {"type": "keyword"},
      "description":    {"type": "text"},
      "date":           {"type": "date"},
      "payment_method": {"type": "keyword"},
      "tags":           {"type": "keyword"},
      "created_at":     {"type": "date"},
      "updated_at":     {"type": "date"}
    }
  }
}`

const userMapping = `{
  "mappings": {
    "properties": {
      "id":            {"type": "keyword"},
      "name":          {"type": "text"},
      "email":         {"type": "keyword"},
      "password_hash": {"type": "keyword", "index": false},
      "created_at":    {"type": "date"},
      "updated_at":    {"type": "date"}
    }
  }
}`

func (e *Elastic) ensureIndex(ctx context.Context, index, mapping string) {
	res, err := e.es.Indices.Create(
		index,
		e.es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
		e.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		slog.Warn("Index bootstrap failed", "index", index, "error", err)
		return
	}
	defer res.Body.Close()
	// An existing index answers 400 resource_already_exists; that is fine.
	if res.IsError() && res.StatusCode != 400 {
		slog.Warn("Index bootstrap rejected", "index", index, "status", res.StatusCode)
	}
}

type txDoc struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	AmountMillis  int64     `json:"amount_millis"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"payment_method"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toTxDoc(t *core.Transaction) txDoc {
	return txDoc{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		AmountMillis:  t.Amount.Millis,
		Type:          string(t.Type),
		Category:      t.Category,
		Description:   t.Description,
		Date:          t.Date,
		PaymentMethod: t.PaymentMethod,
		Tags:          t.Tags,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (d txDoc) toTransaction() core.Transaction {
	return core.Transaction{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		Amount:        core.Money{Millis: d.AmountMillis},
		Type:          core.TransactionType(d.Type),
		Category:      d.Category,
		Description:   d.Description,
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
		Tags:          d.Tags,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type userDoc struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// esQuery translates a TransactionFilter into a bool query. Only non-zero
// fields contribute clauses; the owner term is always present.
func esQuery(f TransactionFilter) map[string]any {
	clauses := []any{
		map[string]any{"term": map[string]any{"owner_id": f.OwnerID}},
	}
	if f.Type != "" {
		clauses = append(clauses, map[string]any{"term": map[string]any{"type": f.Type}})
	}
	if f.Category != "" {
		clauses = append(clauses, map[string]any{"term": map[string]any{"category": f.Category}})
	}
	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		bounds := map[string]any{}
		if !f.StartDate.IsZero() {
			bounds["gte"] = f.StartDate.Format(time.RFC3339)
		}
		if !f.EndDate.IsZero() {
			bounds["lte"] = f.EndDate.Format(time.RFC3339)
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"date": bounds}})
	}
	return map[string]any{"bool": map[string]any{"filter": clauses}}
}

func encodeBody(v any) (*bytes.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

func checkResponse(res *esapi.Response, op string) error {
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: elasticsearch status %d: %s", op, res.StatusCode, body)
	}
	return nil
}

func (e *Elastic) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	return e.indexDoc(ctx, esTransactionIndex, t.ID, toTxDoc(t), "index transaction")
}

func (e *Elastic) indexDoc(ctx context.Context, index, id string, doc any, op string) error {
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res, err := e.es.Index(
		index,
		body,
		e.es.Index.WithDocumentID(id),
		e.es.Index.WithRefresh("true"),
		e.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()
	return checkResponse(res, op)
}

func (e *Elastic) GetTransaction(ctx context.Context, id, ownerID string) (*core.Transaction, error) {
	var doc txDoc
	if err := e.getDoc(ctx, esTransactionIndex, id, &doc); err != nil {
		return nil, err
	}
	// Ownership check happens after the fetch; a foreign-owned record is
	// reported exactly like an absent one.
	if doc.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	t := doc.toTransaction()
	return &t, nil
}

func (e *Elastic) getDoc(ctx context.Context, index, id string, out any) error {
	res, err := e.es.Get(index, id, e.es.Get.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return ErrNotFound
	}
	if err := checkResponse(res, "get document"); err != nil {
		return err
	}
	var envelope struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode get response: %w", err)
	}
	if !envelope.Found {
		return ErrNotFound
	}
	if err := json.Unmarshal(envelope.Source, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source txDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		ByType struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int64  `json:"doc_count"`
				Total    struct {
					Value float64 `json:"value"`
				} `json:"total"`
			} `json:"buckets"`
		} `json:"by_type"`
	} `json:"aggregations"`
}

func (e *Elastic) FindTransactions(ctx context.Context, f TransactionFilter, p PageRequest) ([]core.Transaction, int64, error) {
	body, err := encodeBody(map[string]any{
		"query": esQuery(f),
		"sort": []any{
			map[string]any{"date": "desc"},
			map[string]any{"id": "desc"},
		},
		"from":             p.Offset(),
		"size":             p.Limit,
		"track_total_hits": true,
	})
	if err != nil {
		return nil, 0, err
	}
	res, err := e.es.Search(
		e.es.Search.WithIndex(esTransactionIndex),
		e.es.Search.WithBody(body),
		e.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search transactions: %w", err)
	}
	defer res.Body.Close()
	if err := checkResponse(res, "search transactions"); err != nil {
		return nil, 0, err
	}
	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}
	items := make([]core.Transaction, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		items = append(items, h.Source.toTransaction())
	}
	return items, parsed.Hits.Total.Value, nil
}

func (e *Elastic) UpdateTransaction(ctx context.Context, t *core.Transaction) error {
	// The service resolves (id, owner) before merging, so the replace is a
	// plain reindex of the merged document.
	if _, err := e.GetTransaction(ctx, t.ID, t.OwnerID); err != nil {
		return err
	}
	return e.indexDoc(ctx, esTransactionIndex, t.ID, toTxDoc(t), "update transaction")
}

func (e *Elastic) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	if _, err := e.GetTransaction(ctx, id, ownerID); err != nil {
		return err
	}
	res, err := e.es.Delete(
		esTransactionIndex,
		id,
		e.es.Delete.WithRefresh("true"),
		e.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return ErrNotFound
	}
	return checkResponse(res, "delete transaction")
}

func (e *Elastic) DeleteOwnerTransactions(ctx context.Context, ownerID string) (int64, error) {
	body, err := encodeBody(map[string]any{
		"query": esQuery(TransactionFilter{OwnerID: ownerID}),
	})
	if err != nil {
		return 0, err
	}
	res, err := e.es.DeleteByQuery(
		[]string{esTransactionIndex},
		body,
		e.es.DeleteByQuery.WithRefresh(true),
		e.es.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("delete owner transactions: %w", err)
	}
	defer res.Body.Close()
	if err := checkResponse(res, "delete owner transactions"); err != nil {
		return 0, err
	}
	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode delete-by-query response: %w", err)
	}
	return parsed.Deleted, nil
}

func (e *Elastic) SummarizeTransactions(ctx context.Context, f TransactionFilter) ([]core.TypeAggregate, error) {
	body, err := encodeBody(map[string]any{
		"query": esQuery(f),
		"size":  0,
		"aggs": map[string]any{
			"by_type": map[string]any{
				"terms": map[string]any{"field": "type"},
				"aggs": map[string]any{
					"total": map[string]any{"sum": map[string]any{"field": "amount_millis"}},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	res, err := e.es.Search(
		e.es.Search.WithIndex(esTransactionIndex),
		e.es.Search.WithBody(body),
		e.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	defer res.Body.Close()
	if err := checkResponse(res, "summarize transactions"); err != nil {
		return nil, err
	}
	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode aggregation response: %w", err)
	}
	groups := make([]core.TypeAggregate, 0, len(parsed.Aggregations.ByType.Buckets))
	for _, b := range parsed.Aggregations.ByType.Buckets {
		groups = append(groups, core.TypeAggregate{
			Type: core.TransactionType(b.Key),
			// The sum aggregation over a long field arrives as a JSON
			// double; exact below 2^53 millis.
			TotalMillis: int64(b.Total.Value),
			Count:       b.DocCount,
		})
	}
	return groups, nil
}

func (e *Elastic) CreateUser(ctx context.Context, u *core.User) error {
	existing, err := e.GetUserByEmail(ctx, u.Email)
	if err != nil && err != ErrNotFound {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}
	return e.indexDoc(ctx, esUserIndex, u.ID, userDocFrom(u), "index user")
}

func (e *Elastic) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	var doc userDoc
	if err := e.getDoc(ctx, esUserIndex, id, &doc); err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}

func (e *Elastic) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	body, err := encodeBody(map[string]any{
		"query": map[string]any{"term": map[string]any{"email": email}},
		"size":  1,
	})
	if err != nil {
		return nil, err
	}
	res, err := e.es.Search(
		e.es.Search.WithIndex(esUserIndex),
		e.es.Search.WithBody(body),
		e.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("search user by email: %w", err)
	}
	defer res.Body.Close()
	if err := checkResponse(res, "search user by email"); err != nil {
		return nil, err
	}
	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode user search response: %w", err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, ErrNotFound
	}
	return parsed.Hits.Hits[0].Source.toUser(), nil
}

func (e *Elastic) UpdateUser(ctx context.Context, u *core.User) error {
	other, err := e.GetUserByEmail(ctx, u.Email)
	if err != nil && err != ErrNotFound {
		return err
	}
	if other != nil && other.ID != u.ID {
		return ErrEmailTaken
	}
	if _, err := e.GetUserByID(ctx, u.ID); err != nil {
		return err
	}
	return e.indexDoc(ctx, esUserIndex, u.ID, userDocFrom(u), "update user")
}

func (e *Elastic) DeleteUser(ctx context.Context, id string) error {
	res, err := e.es.Delete(
		esUserIndex,
		id,
		e.es.Delete.WithRefresh("true"),
		e.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return ErrNotFound
	}
	return checkResponse(res, "delete user")
}

func userDocFrom(u *core.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toUser() *core.User {
	return &core.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
