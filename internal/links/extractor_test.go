package links

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medvedikur/erc3-mine-sub001/internal/model"
)

func TestExtractFromMessage_PrefixedIDs(t *testing.T) {
	t.Parallel()

	got := ExtractFromMessage("Logged against proj_atlas for emp_jsmith and cust_acme.")
	assert.Contains(t, got, model.Link{ID: "proj_atlas", Kind: model.LinkProject})
	assert.Contains(t, got, model.Link{ID: "cust_acme", Kind: model.LinkCustomer})
}

func TestExtractFromMessage_DenylistedCompoundFieldNotTreatedAsEmployee(t *testing.T) {
	t.Parallel()

	got := ExtractFromMessage("skills include machine_learning and deep_learning")
	for _, l := range got {
		assert.NotEqual(t, "machine_learning", l.ID)
		assert.NotEqual(t, "deep_learning", l.ID)
	}
}

func TestExtractFromMessage_BareUsernameTreatedAsEmployee(t *testing.T) {
	t.Parallel()

	got := ExtractFromMessage("assigned to john_doe this week")
	assert.Contains(t, got, model.Link{ID: "john_doe", Kind: model.LinkEmployee})
}

func TestDeduplicate_PreservesFirstOccurrenceOrder(t *testing.T) {
	t.Parallel()

	in := []model.Link{
		{ID: "E1", Kind: model.LinkEmployee},
		{ID: "P1", Kind: model.LinkProject},
		{ID: "E1", Kind: model.LinkEmployee},
	}
	out := Deduplicate(in)
	assert.Equal(t, []model.Link{
		{ID: "E1", Kind: model.LinkEmployee},
		{ID: "P1", Kind: model.LinkProject},
	}, out)
}

func TestNormalizeLinks_StringsAndObjects(t *testing.T) {
	t.Parallel()

	raw := []any{
		"emp_e1",
		map[string]any{"kind": "project", "id": "P9"},
		map[string]any{"Type": "customer", "Value": "C2"},
	}
	got := NormalizeLinks(raw)
	assert.Contains(t, got, model.Link{ID: "emp_e1", Kind: model.LinkEmployee})
	assert.Contains(t, got, model.Link{ID: "P9", Kind: model.LinkKind("project")})
	assert.Contains(t, got, model.Link{ID: "C2", Kind: model.LinkKind("customer")})
}

func TestValidateEmployeeLinks_DropsOnlyExplicitNotFound(t *testing.T) {
	t.Parallel()

	in := []model.Link{
		{ID: "E1", Kind: model.LinkEmployee},
		{ID: "E2", Kind: model.LinkEmployee},
		{ID: "P1", Kind: model.LinkProject},
	}

	validate := func(id string) (bool, error) {
		switch id {
		case "E1":
			return true, nil
		case "E2":
			return false, errors.New("employee not found")
		}
		return false, nil
	}

	out := ValidateEmployeeLinks(in, validate)
	assert.Contains(t, out, model.Link{ID: "E1", Kind: model.LinkEmployee})
	assert.NotContains(t, out, model.Link{ID: "E2", Kind: model.LinkEmployee})
	assert.Contains(t, out, model.Link{ID: "P1", Kind: model.LinkProject}, "non-employee links are never validated")
}

func TestValidateEmployeeLinks_KeepsLinkOnTransportError(t *testing.T) {
	t.Parallel()

	in := []model.Link{{ID: "E1", Kind: model.LinkEmployee}}
	validate := func(id string) (bool, error) {
		return false, errors.New("connection reset")
	}

	out := ValidateEmployeeLinks(in, validate)
	assert.Contains(t, out, model.Link{ID: "E1", Kind: model.LinkEmployee}, "only an explicit not-found should drop a link")
}

func TestPrimaryAnswerSegment(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"Alice logged 4.5 hours. She also updated the wiki.", "Alice logged 4.5 hours."},
		{"No sentence boundary here\nsecond line", "No sentence boundary here"},
		{"- first bullet\n- second bullet", "- first bullet\n- second bullet"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PrimaryAnswerSegment(tc.in))
	}
}
