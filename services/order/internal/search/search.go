package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
)

const DefaultIndex = "orders"

var ErrSearch = errors.New("search error")

func NewClient(addr, user, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
		Username:  user,
		Password:  password,
	})
}

type DocumentItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Document is the searchable projection of an order.
type Document struct {
	OrderID         string         `json:"order_id"`
	StoreID         string         `json:"store_id"`
	UserID          string         `json:"user_id"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	DeliveryAddress string         `json:"delivery_address"`
	Status          string         `json:"status"`
	PaymentMethod   string         `json:"payment_method"`
	PaymentStatus   string         `json:"payment_status"`
	TotalAmount     string         `json:"total_amount"`
	Items           []DocumentItem `json:"items"`
	Version         int64          `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func NewDocument(o domain.Order) Document {
	items := make([]DocumentItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = DocumentItem{ProductID: it.ProductID.String(), Name: it.Name, Quantity: it.Quantity}
	}
	return Document{
		OrderID:         o.ID.String(),
		StoreID:         o.Store.ID.String(),
		UserID:          o.Customer.ID.String(),
		CustomerName:    o.Customer.Name,
		CustomerPhone:   o.Customer.Phone,
		DeliveryAddress: o.Customer.Address,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Items:           items,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "order_id":         {"type": "keyword"},
      "store_id":         {"type": "keyword"},
      "user_id":          {"type": "keyword"},
      "customer_name":    {"type": "text"},
      "customer_phone":   {"type": "keyword"},
      "delivery_address": {"type": "text"},
      "status":           {"type": "keyword"},
      "payment_method":   {"type": "keyword"},
      "payment_status":   {"type": "keyword"},
      "total_amount":     {"type": "scaled_float", "scaling_factor": 100},
      "items": {"properties": {"product_id": {"type": "keyword"}, "name": {"type": "text"}, "quantity": {"type": "integer"}}},
      "version":    {"type": "long"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// Indexer keeps one document per order. Documents are written with the
// order version as an external version, so a late event never overwrites a
// newer state.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func NewIndexer(es *elasticsearch.Client, index string) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{ES: es, Index: index}
}

func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.ES.Indices.Exists([]string{ix.Index}, ix.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = ix.ES.Indices.Create(ix.Index,
		ix.ES.Indices.Create.WithContext(ctx),
		ix.ES.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res.Status(), res.Body)
	}
	return nil
}

func (ix *Indexer) Notify(ctx context.Context, ev domain.Event) error {
	return ix.Put(ctx, ev.Order)
}

func (ix *Indexer) Put(ctx context.Context, o domain.Order) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(NewDocument(o)); err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}

	res, err := ix.ES.Index(ix.Index, &buf,
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(o.ID.String()),
		ix.ES.Index.WithVersion(int(o.Version)),
		ix.ES.Index.WithVersionType("external"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		return nil
	}
	if res.IsError() {
		return responseError(res.Status(), res.Body)
	}
	return nil
}

type Query struct {
	StoreID uuid.UUID
	Text    string
	Status  domain.Status
	From    int
	Size    int
}

// Search runs a fuzzy match over customer and item names within one store.
func (ix *Indexer) Search(ctx context.Context, q Query) (int64, []Document, error) {
	filter := []map[string]any{
		{"term": map[string]any{"store_id": q.StoreID.String()}},
	}
	if q.Status != "" {
		filter = append(filter, map[string]any{"term": map[string]any{"status": string(q.Status)}})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": filter,
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q.Text,
						"fields":    []string{"customer_name^2", "items.name", "delivery_address", "customer_phone"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"sort": []any{map[string]any{"created_at": map[string]any{"order": "desc"}}},
		"from": q.From,
		"size": q.Size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Index),
		ix.ES.Search.WithBody(&buf),
		ix.ES.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError(res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("%w: decode: %v", ErrSearch, err)
	}

	docs := make([]Document, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}

func responseError(status string, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("%w: %s: %s", ErrSearch, status, strings.TrimSpace(string(msg)))
}
