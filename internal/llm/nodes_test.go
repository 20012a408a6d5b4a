package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeDirectory_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var d *NodeDirectory
	assert.Equal(t, "", d.Last(context.Background()))
	d.Remember(context.Background(), "node1") // must not panic
}

func TestNodeDirectory_NilClientIsSafe(t *testing.T) {
	t.Parallel()

	d := NewNodeDirectory(nil, "gonka")
	assert.Equal(t, "", d.Last(context.Background()))
	d.Remember(context.Background(), "node1") // must not panic
}
