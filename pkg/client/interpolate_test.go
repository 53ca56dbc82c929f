package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"user": "ALICE", "loan_number": "0012345678"}
	scraped := map[string]string{"user": "IGNORED", "borrower_name": "JANE Q BORROWER"}
	lookup := chain(vars, scraped)

	tests := []struct {
		name       string
		in         string
		want       string
		unresolved []string
	}{
		{"plain", "ENTER", "ENTER", nil},
		{"single", "{{ user }}", "ALICE", nil},
		{"no spaces", "{{user}}", "ALICE", nil},
		{"caller wins over scraped", "{{ user }}", "ALICE", nil},
		{"scraped fallback", "{{ borrower_name }}", "JANE Q BORROWER", nil},
		{"embedded", "LN-{{ loan_number }}-X", "LN-0012345678-X", nil},
		{"unresolved kept", "{{ pin }}/{{ pin }}/{{ user }}", "{{ pin }}/{{ pin }}/ALICE", []string{"pin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unresolved := Interpolate(tt.in, lookup)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unresolved, unresolved)
		})
	}
}

func TestCompare(t *testing.T) {
	assert.True(t, Compare("equals", "JANE ", "JANE"))
	assert.False(t, Compare("equals", "jane", "JANE"))
	assert.True(t, Compare("not_equals", "A", "B"))
	assert.True(t, Compare("contains", "JANE Q BORROWER", "Q B"))
	assert.True(t, Compare("starts_with", "182450.17", "1824"))
	assert.True(t, Compare("ends_with", "182450.17", ".17"))
	assert.True(t, Compare("empty", "   ", ""))
	assert.True(t, Compare("not_empty", "X", ""))
	assert.False(t, Compare("bogus", "X", "X"))
}
