package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Known(t *testing.T) {
	t.Parallel()

	assert.False(t, Identity{}.Known())
	assert.True(t, Identity{UserID: "E1"}.Known())
	assert.True(t, Identity{IsPublic: true}.Known())
}

func TestRole_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "system", RoleSystem.String())
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, "assistant", RoleAssistant.String())
	assert.Equal(t, "unknown", Role(99).String())
}

func TestLinkKind_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, LinkEmployee.Valid())
	assert.True(t, LinkWiki.Valid())
	assert.False(t, LinkKind("bogus").Valid())
}

func TestLink_KeyDistinguishesKind(t *testing.T) {
	t.Parallel()

	a := Link{ID: "1", Kind: LinkEmployee}
	b := Link{ID: "1", Kind: LinkProject}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestEstimateUsage_CharDivisionAndMarkedEstimated(t *testing.T) {
	t.Parallel()

	u := EstimateUsage(400, 40)
	assert.Equal(t, 100, u.PromptTokens)
	assert.Equal(t, 10, u.CompletionTokens)
	assert.Equal(t, 110, u.TotalTokens)
	assert.True(t, u.Estimated)
}
