package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing ID",
			cfg:  Config{Rules: []Rule{{Pattern: `x`}}},
		},
		{
			name: "missing pattern",
			cfg:  Config{Rules: []Rule{{ID: "x"}}},
		},
		{
			name: "invalid pattern",
			cfg:  Config{Rules: []Rule{{ID: "bad", Pattern: `[invalid`}}},
		},
		{
			name: "pattern too long",
			cfg:  Config{Rules: []Rule{{ID: "long", Pattern: strings.Repeat("a", MaxPatternLength+1)}}},
		},
		{
			name: "unknown target",
			cfg:  Config{Rules: []Rule{{ID: "x", Pattern: `x`, Target: "path"}}},
		},
		{
			name: "unknown severity",
			cfg:  Config{Rules: []Rule{{ID: "x", Pattern: `x`, Severity: "critical"}}},
		},
		{
			name: "duplicate ID",
			cfg:  Config{Rules: []Rule{{ID: "x", Pattern: `a`}, {ID: "x", Pattern: `b`}}},
		},
		{
			name: "invalid allow key",
			cfg:  Config{AllowKeys: []string{`(unclosed`}},
		},
		{
			name: "unknown scope",
			cfg:  Config{Scope: "everything"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeLeaf, s)

	s, err = ParseScope("Subtree")
	require.NoError(t, err)
	assert.Equal(t, ScopeSubtree, s)

	_, err = ParseScope("branch")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestKeyRule(t *testing.T) {
	r := KeyRule("custom-key-1", `(?i)^pin$`)
	assert.Equal(t, TargetKey, r.Target)
	assert.Equal(t, "high", r.Severity)

	set, err := New(&Config{Rules: []Rule{r}})
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}
