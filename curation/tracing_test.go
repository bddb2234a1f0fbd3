package curation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/BaSui01/memcurator/testutil/fixtures"
)

func TestCurator_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c := NewCurator(WithTracer(tp.Tracer("test")))
	doc, err := c.Curate(context.Background(), fixtures.OAuthSession())
	require.NoError(t, err)

	spans := recorder.Ended()
	names := make([]string, 0, len(spans))
	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		names = append(names, s.Name())
		byName[s.Name()] = s
	}
	assert.ElementsMatch(t, []string{
		"curation.filter", "curation.summarize", "curation.render", "curation.Curate",
	}, names)

	root := byName["curation.Curate"]
	for _, child := range []string{"curation.filter", "curation.summarize", "curation.render"} {
		assert.Equal(t, root.SpanContext().SpanID(), byName[child].Parent().SpanID(), child)
	}

	var docID string
	for _, kv := range root.Attributes() {
		if kv.Key == "document_id" {
			docID = kv.Value.AsString()
		}
	}
	assert.Equal(t, doc.ID, docID)
}
