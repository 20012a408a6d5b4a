package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArgs_NoSchemaRegistered(t *testing.T) {
	t.Parallel()

	err := ValidateArgs(EmployeesGet, map[string]any{})
	assert.NoError(t, err, "read-only tools have no schema and should never fail this gate")
}

func TestValidateArgs_TimeLog(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{
			name: "complete",
			args: map[string]any{
				"employee": "E1", "project": "P1", "date": "2026-01-05", "hours": 4.0,
			},
			wantErr: false,
		},
		{
			name:    "missing required field",
			args:    map[string]any{"employee": "E1", "project": "P1"},
			wantErr: true,
		},
		{
			name: "customer-only log with no project passes",
			args: map[string]any{
				"employee": "E1", "customer": "C1", "date": "2026-01-05", "hours": 4.0,
			},
			wantErr: false,
		},
		{
			name: "zero hours allowed",
			args: map[string]any{
				"employee": "E1", "project": "P1", "date": "2026-01-05", "hours": 0,
			},
			wantErr: false,
		},
		{
			name: "wrong type",
			args: map[string]any{
				"employee": "E1", "project": "P1", "date": "2026-01-05", "hours": "four",
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateArgs(TimeLog, tc.args)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateArgs_NilArgs(t *testing.T) {
	t.Parallel()

	err := ValidateArgs(WikiUpdate, nil)
	assert.Error(t, err, "nil args should fail the required-field check, not panic")
}
