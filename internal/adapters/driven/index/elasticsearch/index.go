package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

const (
	// DefaultIndexName matches the index used by earlier deployments.
	DefaultIndexName = "text-files-index"

	// DefaultPageSize is the engine's default result page.
	DefaultPageSize = 10

	scrollKeepAlive = time.Minute
	scrollPageSize  = 1000

	alreadyExists = "resource_already_exists_exception"
)

// Config configures the Elasticsearch adapter.
type Config struct {
	// Addresses lists cluster endpoints, e.g. https://host:9243.
	Addresses []string
	// APIKey is the base64 encoded API key sent as "ApiKey ...".
	APIKey string
	// Index is the index name. Empty means DefaultIndexName.
	Index string
	// PageSize caps search results. Zero means DefaultPageSize.
	PageSize int
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Index is a SearchIndex backed by an Elasticsearch index.
type Index struct {
	es       *elasticsearch.Client
	name     string
	pageSize int
}

// New creates a client for the configured cluster. No request is made.
func New(cfg Config) (*Index, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("%w: elasticsearch endpoint", domain.ErrConfigMissing)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: elasticsearch client: %w", domain.ErrConnection, err)
	}

	name := cfg.Index
	if name == "" {
		name = DefaultIndexName
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Index{es: es, name: name, pageSize: pageSize}, nil
}

// Name returns the index name.
func (i *Index) Name() string {
	return i.name
}

// EnsureSchema creates the index with its mapping when it does not exist.
// Losing a creation race to another process counts as success.
func (i *Index) EnsureSchema(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: index exists: %w", domain.ErrConnection, err)
	}
	drain(res)

	switch res.StatusCode {
	case http.StatusOK:
		logger.Debug("elasticsearch: index %s exists", i.name)
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("%w: index exists: status %d", domain.ErrConnection, res.StatusCode)
	}

	body, err := encode(mapping())
	if err != nil {
		return err
	}
	res, err = i.es.Indices.Create(i.name,
		i.es.Indices.Create.WithBody(body),
		i.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: create index: %w", domain.ErrIndexWrite, err)
	}
	defer drain(res)

	if res.IsError() {
		e := decodeError(res)
		if e.Error.Type == alreadyExists {
			return nil
		}
		return fmt.Errorf("%w: create index: %s", domain.ErrIndexWrite, describe(res, e))
	}

	logger.Info("elasticsearch: created index %s", i.name)
	return nil
}

// Upsert writes doc under its source id, replacing any previous version.
func (i *Index) Upsert(ctx context.Context, doc domain.IndexedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	body, err := encode(document{
		Filename: doc.Filename,
		Content:  doc.Content,
		SourceID: doc.SourceID,
	})
	if err != nil {
		return err
	}

	res, err := i.es.Index(i.name, body,
		i.es.Index.WithDocumentID(doc.SourceID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrIndexWrite, doc.SourceID, err)
	}
	defer drain(res)

	if res.IsError() {
		return fmt.Errorf("%w: index %s: %s", domain.ErrIndexWrite, doc.SourceID, describe(res, decodeError(res)))
	}
	return nil
}

// Search runs a substring query on the content field.
func (i *Index) Search(ctx context.Context, term string) ([]domain.IndexHit, error) {
	body, err := encode(searchBody(term, i.pageSize))
	if err != nil {
		return nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(body),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrConnection, err)
	}
	defer drain(res)

	if res.IsError() {
		// A 400 means the cluster refused the query itself.
		if res.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: search: %s", domain.ErrInvalidQuery, describe(res, decodeError(res)))
		}
		return nil, fmt.Errorf("%w: search: %s", domain.ErrConnection, describe(res, decodeError(res)))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %w", domain.ErrConnection, err)
	}

	hits := make([]domain.IndexHit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		sourceID := h.Source.SourceID
		if sourceID == "" {
			sourceID = h.ID
		}
		hits = append(hits, domain.IndexHit{Filename: h.Source.Filename, SourceID: sourceID})
	}
	return hits, nil
}

// Delete removes the document for sourceID. A missing document is not an error.
func (i *Index) Delete(ctx context.Context, sourceID string) error {
	res, err := i.es.Delete(i.name, sourceID, i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrIndexWrite, sourceID, err)
	}
	defer drain(res)

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: delete %s: %s", domain.ErrIndexWrite, sourceID, describe(res, decodeError(res)))
	}
	return nil
}

// ListIDs returns the id of every document, paging with the scroll API.
func (i *Index) ListIDs(ctx context.Context) ([]string, error) {
	body, err := encode(map[string]any{
		"_source": false,
		"query":   map[string]any{"match_all": map[string]any{}},
	})
	if err != nil {
		return nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(body),
		i.es.Search.WithSize(scrollPageSize),
		i.es.Search.WithScroll(scrollKeepAlive),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list ids: %w", domain.ErrConnection, err)
	}

	var (
		ids      []string
		scrollID string
	)
	defer func() {
		if scrollID != "" {
			i.clearScroll(scrollID)
		}
	}()

	for {
		page, err := readPage(res)
		if err != nil {
			return nil, err
		}
		if page.ScrollID != "" {
			scrollID = page.ScrollID
		}
		if len(page.Hits.Hits) == 0 {
			return ids, nil
		}
		for _, h := range page.Hits.Hits {
			ids = append(ids, h.ID)
		}

		res, err = i.es.Scroll(
			i.es.Scroll.WithContext(ctx),
			i.es.Scroll.WithScrollID(scrollID),
			i.es.Scroll.WithScroll(scrollKeepAlive),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scroll: %w", domain.ErrConnection, err)
		}
	}
}

// Count returns the number of documents in the index.
func (i *Index) Count(ctx context.Context) (int, error) {
	res, err := i.es.Count(
		i.es.Count.WithContext(ctx),
		i.es.Count.WithIndex(i.name),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrConnection, err)
	}
	defer drain(res)

	if res.IsError() {
		return 0, fmt.Errorf("%w: count: %s", domain.ErrConnection, describe(res, decodeError(res)))
	}

	var cr countResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("%w: decoding count: %w", domain.ErrConnection, err)
	}
	return cr.Count, nil
}

// HealthCheck pings the cluster.
func (i *Index) HealthCheck(ctx context.Context) error {
	res, err := i.es.Ping(i.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: ping: %w", domain.ErrConnection, err)
	}
	drain(res)

	if res.IsError() {
		return fmt.Errorf("%w: ping: status %d", domain.ErrConnection, res.StatusCode)
	}
	return nil
}

// Close releases idle connections held by the client transport.
func (i *Index) Close() error {
	if t, ok := i.es.Transport.(interface{ CloseIdleConnections() }); ok {
		t.CloseIdleConnections()
	}
	return nil
}

func (i *Index) clearScroll(scrollID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := i.es.ClearScroll(
		i.es.ClearScroll.WithContext(ctx),
		i.es.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		logger.Debug("elasticsearch: clear scroll: %v", err)
		return
	}
	drain(res)
}

func readPage(res *esapi.Response) (*searchResponse, error) {
	defer drain(res)

	if res.IsError() {
		return nil, fmt.Errorf("%w: list ids: %s", domain.ErrConnection, describe(res, decodeError(res)))
	}

	var page searchResponse
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding scroll page: %w", domain.ErrConnection, err)
	}
	return &page, nil
}

func encode(v any) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", domain.ErrInvalidInput, err)
	}
	return &buf, nil
}

func decodeError(res *esapi.Response) errorResponse {
	var e errorResponse
	if res.Body != nil {
		_ = json.NewDecoder(res.Body).Decode(&e)
	}
	return e
}

func describe(res *esapi.Response, e errorResponse) string {
	if e.Error.Type == "" {
		return res.Status()
	}
	return strings.TrimSpace(fmt.Sprintf("%s: %s: %s", res.Status(), e.Error.Type, e.Error.Reason))
}

// drain consumes and closes the body so the connection can be reused.
func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
