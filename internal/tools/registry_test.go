package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetParser_ResolvesAcrossNameVariants(t *testing.T) {
	t.Parallel()

	p1 := GetParser("employees_get")
	p2 := GetParser("Employees-Get")
	assert.NotNil(t, p1)
	assert.NotNil(t, p2)
}

func TestGetParser_UnknownToolReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, GetParser("delete_everything"))
}

func TestListTools_IncludesEveryCanonicalMutationTool(t *testing.T) {
	t.Parallel()

	all := map[Name]bool{}
	for _, n := range ListTools() {
		all[n] = true
	}
	for n := range MutationToolNames {
		assert.True(t, all[n], n)
	}
}

func TestParseError_ErrorFormatsWithAndWithoutTool(t *testing.T) {
	t.Parallel()

	withTool := &ParseError{Tool: "time_log", Message: "missing hours"}
	assert.Contains(t, withTool.Error(), "time_log")
	assert.Contains(t, withTool.Error(), "missing hours")

	noTool := &ParseError{Message: "bad input"}
	assert.Equal(t, "bad input", noTool.Error())

	var nilErr *ParseError
	assert.Equal(t, "", nilErr.Error())
}
