package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestFielders_PrependsMsgAndPairsUpKeyvals(t *testing.T) {
	t.Parallel()

	fields := fielders("starting task", []any{"task_id", "t1", "turn", 2})
	require.Len(t, fields, 3)
}

func TestFielders_DropsNonStringKeys(t *testing.T) {
	t.Parallel()

	fields := fielders("msg", []any{42, "ignored", "ok", "v"})
	assert.Len(t, fields, 2, "the msg field plus the one valid string-keyed pair")
}

func TestFielders_OddTrailingKeyIgnored(t *testing.T) {
	t.Parallel()

	fields := fielders("msg", []any{"key"})
	assert.Len(t, fields, 1, "an unpaired trailing key has no value to attach")
}

func TestTagAttrs_PairsStringsIntoAttributes(t *testing.T) {
	t.Parallel()

	attrs := tagAttrs([]string{"worker", "1", "backend", "gonka"})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("worker", "1"),
		attribute.String("backend", "gonka"),
	}, attrs)
}

func TestKVAttrs_TypesValuesByKind(t *testing.T) {
	t.Parallel()

	attrs := kvAttrs([]any{"count", 3, "ok", true, "name", "alice"})
	assert.Contains(t, attrs, attribute.Int("count", 3))
	assert.Contains(t, attrs, attribute.Bool("ok", true))
	assert.Contains(t, attrs, attribute.String("name", "alice"))
}

func TestNoopLogger_NeverPanics(t *testing.T) {
	t.Parallel()

	var l Logger = NoopLogger{}
	ctx := context.Background()
	l.Debug(ctx, "x")
	l.Info(ctx, "x")
	l.Warn(ctx, "x")
	l.Error(ctx, "x")
}
