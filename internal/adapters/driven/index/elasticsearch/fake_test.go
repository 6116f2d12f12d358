package elasticsearch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakeCluster is an in-memory stand-in for the handful of Elasticsearch
// endpoints the adapter calls.
type fakeCluster struct {
	mu       sync.Mutex
	indices  map[string]map[string]document
	mappings map[string]json.RawMessage
	scrolls  map[string][]string

	// failWith, when set, answers every request with this status.
	failWith int
	// createRace makes index creation answer "already exists".
	createRace bool

	lastSearch map[string]any
	requests   []string
}

func newFakeCluster(t *testing.T) (*fakeCluster, *httptest.Server) {
	t.Helper()

	f := &fakeCluster{
		indices:  make(map[string]map[string]document),
		mappings: make(map[string]json.RawMessage),
		scrolls:  make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", f.root)
	mux.HandleFunc("/{index}", f.index)
	mux.HandleFunc("/{index}/_doc/{id}", f.doc)
	mux.HandleFunc("/{index}/_search", f.search)
	mux.HandleFunc("/{index}/_count", f.count)
	mux.HandleFunc("/_search/scroll", f.scroll)
	mux.HandleFunc("/_search/scroll/{id}", f.scroll)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		fail := f.failWith
		f.mu.Unlock()

		if fail != 0 {
			writeError(w, fail, "cluster_block_exception", "simulated failure")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return f, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, reason string) {
	writeJSON(w, status, map[string]any{
		"error":  map[string]any{"type": typ, "reason": reason},
		"status": status,
	})
}

func (f *fakeCluster) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": map[string]any{"number": "8.17.0"},
		"tagline": "You Know, for Search",
	})
}

func (f *fakeCluster) index(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := r.PathValue("index")
	_, exists := f.indices[name]

	switch r.Method {
	case http.MethodHead:
		if exists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodPut:
		if exists || f.createRace {
			writeError(w, http.StatusBadRequest, alreadyExists, "index ["+name+"] already exists")
			return
		}
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.indices[name] = make(map[string]document)
		f.mappings[name] = body
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "index": name})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeCluster) doc(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name, id := r.PathValue("index"), r.PathValue("id")
	docs, ok := f.indices[name]
	if !ok {
		// Elasticsearch auto-creates indices on write.
		docs = make(map[string]document)
		f.indices[name] = docs
	}

	switch r.Method {
	case http.MethodPut, http.MethodPost:
		var d document
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeError(w, http.StatusBadRequest, "mapper_parsing_exception", err.Error())
			return
		}
		_, existed := docs[id]
		docs[id] = d
		result, status := "created", http.StatusCreated
		if existed {
			result, status = "updated", http.StatusOK
		}
		writeJSON(w, status, map[string]any{"_id": id, "result": result})
	case http.MethodDelete:
		if _, existed := docs[id]; !existed {
			writeJSON(w, http.StatusNotFound, map[string]any{"_id": id, "result": "not_found"})
			return
		}
		delete(docs, id)
		writeJSON(w, http.StatusOK, map[string]any{"_id": id, "result": "deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type fakeSearchRequest struct {
	Size  *int `json:"size"`
	Query struct {
		MatchAll *struct{} `json:"match_all"`
		Wildcard map[string]struct {
			Value string `json:"value"`
		} `json:"wildcard"`
	} `json:"query"`
}

func (f *fakeCluster) search(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := r.PathValue("index")
	docs, ok := f.indices[name]
	if !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+name+"]")
		return
	}

	var raw map[string]any
	var req fakeSearchRequest
	body := json.NewDecoder(r.Body)
	if err := body.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}
	f.lastSearch = raw
	encoded, _ := json.Marshal(raw)
	_ = json.Unmarshal(encoded, &req)

	ids := make([]string, 0, len(docs))
	for id, d := range docs {
		if req.Query.MatchAll != nil || matchesWildcard(d.Content, req.Query.Wildcard["content"].Value) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	size := 10
	if req.Size != nil {
		size = *req.Size
	}
	if s := r.URL.Query().Get("size"); s != "" {
		_ = json.Unmarshal([]byte(s), &size)
	}

	if r.URL.Query().Get("scroll") != "" {
		scrollID := "scroll-" + name
		var page []string
		page, f.scrolls[scrollID] = split(ids, size)
		writeJSON(w, http.StatusOK, hitsResponse(scrollID, docs, page))
		return
	}

	page, _ := split(ids, size)
	writeJSON(w, http.StatusOK, hitsResponse("", docs, page))
}

func (f *fakeCluster) scroll(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodDelete {
		f.scrolls = make(map[string][]string)
		writeJSON(w, http.StatusOK, map[string]any{"succeeded": true})
		return
	}

	var req struct {
		ScrollID string `json:"scroll_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.ScrollID == "" {
		req.ScrollID = r.URL.Query().Get("scroll_id")
	}

	remaining, ok := f.scrolls[req.ScrollID]
	if !ok {
		writeError(w, http.StatusNotFound, "search_context_missing_exception", "no search context")
		return
	}
	name := strings.TrimPrefix(req.ScrollID, "scroll-")
	var page []string
	page, f.scrolls[req.ScrollID] = split(remaining, 2)
	writeJSON(w, http.StatusOK, hitsResponse(req.ScrollID, f.indices[name], page))
}

func (f *fakeCluster) count(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, ok := f.indices[r.PathValue("index")]
	if !ok {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(docs)})
}

func (f *fakeCluster) setDocs(index string, docs map[string]document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indices[index] = docs
}

func (f *fakeCluster) fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = status
}

func hitsResponse(scrollID string, docs map[string]document, ids []string) map[string]any {
	hits := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		d := docs[id]
		hits = append(hits, map[string]any{
			"_id":     id,
			"_source": map[string]any{"filename": d.Filename, "sourceId": d.SourceID},
		})
	}
	resp := map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(hits), "relation": "eq"},
			"hits":  hits,
		},
	}
	if scrollID != "" {
		resp["_scroll_id"] = scrollID
	}
	return resp
}

func split(ids []string, n int) ([]string, []string) {
	if n >= len(ids) {
		return ids, nil
	}
	return ids[:n], ids[n:]
}

// matchesWildcard implements the *term* subset of wildcard syntax.
func matchesWildcard(content, pattern string) bool {
	if !strings.HasPrefix(pattern, "*") || !strings.HasSuffix(pattern, "*") || len(pattern) < 2 {
		return false
	}
	inner := pattern[1 : len(pattern)-1]
	unescaped := strings.NewReplacer(`\\`, `\`, `\*`, `*`, `\?`, `?`).Replace(inner)
	return strings.Contains(content, unescaped)
}
