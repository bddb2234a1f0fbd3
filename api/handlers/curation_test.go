package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/memcurator/api"
	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/curation"
	"github.com/BaSui01/memcurator/curation/anchor"
	"github.com/BaSui01/memcurator/indexing"
	"github.com/BaSui01/memcurator/store"
	"github.com/BaSui01/memcurator/testutil"
	"github.com/BaSui01/memcurator/testutil/fixtures"
	"github.com/BaSui01/memcurator/types"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type testServer struct {
	mux     *http.ServeMux
	store   *store.DocumentStore
	indexer *indexing.Indexer
}

func newTestServer(t *testing.T, withStore, withIndexer bool) *testServer {
	t.Helper()
	logger := testutil.Logger(t)
	curator := curation.NewCurator(curation.WithClock(testutil.FixedClock(fixedNow)))

	ts := &testServer{mux: http.NewServeMux()}
	var opts []CurationOption
	if withStore {
		s, err := store.Open(config.DatabaseConfig{Driver: "sqlite", Name: t.TempDir() + "/api.db"}, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		ts.store = s
		opts = append(opts, WithStore(s))
	}
	if withIndexer {
		ts.indexer = indexing.NewIndexer(indexing.NewHashEmbedder(64), indexing.NewInMemoryVectorStore(64, logger))
		opts = append(opts, WithIndexer(ts.indexer))
	}
	opts = append(opts, WithAnchorGenerator(anchor.NewGenerator(testutil.FixedClock(fixedNow)), "implementation"))

	NewCurationHandler(curator, logger, opts...).Register(ts.mux)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, r)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool       `json:"success"`
		Data    T          `json:"data"`
		Error   *ErrorInfo `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	require.True(t, env.Success, "error: %+v", env.Error)
	return env.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestHandleCurate_Stateless(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodPost, "/v1/curate", testutil.TranscriptJSON(fixtures.OAuthSession()))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeData[api.CurateResponse](t, w)
	require.NotNil(t, resp.Document)
	assert.NotEmpty(t, resp.Document.ID)
	assert.Contains(t, resp.Document.Markdown, "auth.js")
	assert.False(t, resp.Saved)
	assert.Zero(t, resp.IndexedRecords)
	for _, s := range resp.Document.Sections {
		assert.True(t, anchor.IsValid(s.AnchorID), s.AnchorID)
	}
}

func TestHandleCurate_SavesAndIndexes(t *testing.T) {
	ts := newTestServer(t, true, true)

	w := ts.do(t, http.MethodPost, "/v1/curate", testutil.TranscriptJSON(fixtures.DecisionSession()))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeData[api.CurateResponse](t, w)
	assert.True(t, resp.Saved)
	assert.Greater(t, resp.IndexedRecords, 0)
	assert.Empty(t, resp.Warnings)

	got, err := ts.store.Get(context.Background(), resp.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Document.Markdown, got.Markdown)

	w = ts.do(t, http.MethodPost, "/v1/search", []byte(`{"query":"redis session storage","top_k":3}`))
	require.Equal(t, http.StatusOK, w.Code)
	search := decodeData[api.SearchResponse](t, w)
	require.NotEmpty(t, search.Results)
	assert.Equal(t, resp.Document.ID, search.Results[0].Record.DocumentID)
	assert.Nil(t, search.Results[0].Record.Vector)
}

func TestHandleCurate_SkipSave(t *testing.T) {
	ts := newTestServer(t, true, false)

	w := ts.do(t, http.MethodPost, "/v1/curate?save=false", testutil.TranscriptJSON(fixtures.OAuthSession()))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[api.CurateResponse](t, w)
	assert.False(t, resp.Saved)

	n, err := ts.store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandleCurate_InvalidInput(t *testing.T) {
	ts := newTestServer(t, false, false)

	tests := []struct {
		name string
		body []byte
	}{
		{"object instead of array", []byte(`{"prompt":"hi"}`)},
		{"not json", []byte(`[oops`)},
		{"empty", []byte(``)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/v1/curate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, string(types.ErrInvalidInput), errorCode(t, w))
		})
	}
}

func TestHandleCurate_EmptyTranscriptStillRenders(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodPost, "/v1/curate", []byte(`[]`))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[api.CurateResponse](t, w)
	assert.NotEmpty(t, resp.Document.Markdown)
}

func TestHandleTriggers(t *testing.T) {
	ts := newTestServer(t, false, false)

	text := "The trigger extractor returned short output for long sessions. " +
		"We chose json5 parser for the config loader because comments matter. " +
		"Fixed the dedupe threshold in filterPipeline and added the anchor registry. " +
		"The semantic summarizer now classifies messages before extractTriggerPhrases runs."
	body, err := json.Marshal(api.TriggersRequest{Text: text, IncludeCandidates: true})
	require.NoError(t, err)
	w := ts.do(t, http.MethodPost, "/v1/triggers", body)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeData[api.TriggersResponse](t, w)
	assert.Contains(t, resp.Phrases, "short output")
	assert.False(t, resp.Stats.Rejected)
	assert.Greater(t, resp.Stats.InputLength, 0)
	assert.Len(t, resp.Candidates, len(resp.Phrases))
}

func TestHandleTriggers_ShortInputRejected(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodPost, "/v1/triggers", []byte(`{"text":"hi"}`))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeData[api.TriggersResponse](t, w)
	assert.NotNil(t, resp.Phrases)
	assert.Empty(t, resp.Phrases)
	assert.True(t, resp.Stats.Rejected)
}

func TestHandleAnchors(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodPost, "/v1/anchors", []byte(`{"title":"OAuth Callback Handler","category":"implementation"}`))
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeData[api.AnchorResponse](t, w)
	assert.Regexp(t, `^implementation-[a-z-]+-[0-9a-f]{8}$`, first.AnchorID)
	assert.NotContains(t, first.AnchorID, "implementation-implementation")

	body, _ := json.Marshal(api.AnchorRequest{Title: "OAuth Callback Handler", Category: "implementation", Existing: []string{first.AnchorID}})
	w = ts.do(t, http.MethodPost, "/v1/anchors", body)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeData[api.AnchorResponse](t, w)
	assert.NotEqual(t, first.AnchorID, second.AnchorID)
}

func TestHandleAnchors_DefaultCategoryAndValidation(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodPost, "/v1/anchors", []byte(`{"title":"Session Store"}`))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[api.AnchorResponse](t, w)
	assert.True(t, strings.HasPrefix(resp.AnchorID, "implementation-"), resp.AnchorID)

	w = ts.do(t, http.MethodPost, "/v1/anchors", []byte(`{"title":"  "}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentRoutes(t *testing.T) {
	ts := newTestServer(t, true, true)

	w := ts.do(t, http.MethodPost, "/v1/curate", testutil.TranscriptJSON(fixtures.OAuthSession()))
	require.Equal(t, http.StatusOK, w.Code)
	doc := decodeData[api.CurateResponse](t, w).Document

	w = ts.do(t, http.MethodGet, "/v1/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeData[curation.Document](t, w)
	assert.Equal(t, doc.ID, got.ID)

	w = ts.do(t, http.MethodGet, "/v1/documents/"+doc.ID+"?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, doc.Markdown, w.Body.String())

	w = ts.do(t, http.MethodGet, "/v1/documents?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeData[api.DocumentList](t, w)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Documents, 1)

	if len(doc.Summary.TriggerPhrases) > 0 {
		w = ts.do(t, http.MethodGet, "/v1/documents?trigger="+url.QueryEscape(doc.Summary.TriggerPhrases[0]), nil)
		require.Equal(t, http.StatusOK, w.Code)
		byTrigger := decodeData[api.DocumentList](t, w)
		require.Len(t, byTrigger.Documents, 1)
	}

	w = ts.do(t, http.MethodDelete, "/v1/documents/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/documents/"+doc.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(types.ErrNotFound), errorCode(t, w))

	results, err := ts.indexer.Search(context.Background(), "oauth login", 10)
	require.NoError(t, err)
	assert.Empty(t, results, "delete also removes index records")
}

func TestDocumentRoutes_BadPaging(t *testing.T) {
	ts := newTestServer(t, true, false)

	w := ts.do(t, http.MethodGet, "/v1/documents?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_OptionalRoutes(t *testing.T) {
	ts := newTestServer(t, false, false)

	w := ts.do(t, http.MethodGet, "/v1/documents/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/search", []byte(`{"query":"x"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/curate", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleSearch_Validation(t *testing.T) {
	ts := newTestServer(t, false, true)

	w := ts.do(t, http.MethodPost, "/v1/search", []byte(`{"query":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/search", []byte(`{"query":"anything"}`))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeData[api.SearchResponse](t, w)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestQueryHelpers(t *testing.T) {
	assert.True(t, queryBool("", true))
	assert.False(t, queryBool("false", true))
	assert.True(t, queryBool("garbage", true))

	n, err := queryInt("", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = queryInt("x", 0)
	assert.Error(t, err)
}
