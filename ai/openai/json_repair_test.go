package openai

import (
	"encoding/json"
	"testing"

	"github.com/pellucid/docdex/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid JSON unchanged",
			input: `{"id": "r1", "type": "hard"}`,
			want:  `{"id": "r1", "type": "hard"}`,
		},
		{
			name:  "missing opening quote after comma",
			input: `{"id": "r1", type": "hard"}`,
			want:  `{"id": "r1", "type": "hard"}`,
		},
		{
			name:  "missing opening quote after brace",
			input: `{id": "r1"}`,
			want:  `{"id": "r1"}`,
		},
		{
			name:  "unquoted value left alone",
			input: `{"violations": 0, "status": "active"}`,
			want:  `{"violations": 0, "status": "active"}`,
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.input))
		})
	}
}

func TestRepairJSON_ResultParses(t *testing.T) {
	broken := `[{id": "rest-1", name": "Minimum rest", "type": "hard", "description": "11h rest", "status": "active", "violations": 0}]`

	var rules []ai.ExtractedRule
	err := json.Unmarshal([]byte(repairJSON(broken)), &rules)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "rest-1", rules[0].Id)
	assert.Equal(t, ai.RuleTypeHard, rules[0].Type)
}

func TestStripCodeFences(t *testing.T) {
	fenced := "```json\n[{\"id\": \"r1\"}]\n```"
	assert.Equal(t, `[{"id": "r1"}]`, stripCodeFences(fenced))

	assert.Equal(t, `[]`, stripCodeFences("[]"))
}

func TestNormalizeRules(t *testing.T) {
	rules := []ai.ExtractedRule{
		{Id: "r1", Type: "mandatory"},
		{Id: "r2", Type: ai.RuleTypeHard, Status: ai.RuleStatusInactive},
	}
	normalizeRules(rules)

	assert.Equal(t, ai.RuleTypeSoft, rules[0].Type)
	assert.Equal(t, ai.RuleStatusActive, rules[0].Status)
	assert.Equal(t, ai.RuleTypeHard, rules[1].Type)
	assert.Equal(t, ai.RuleStatusInactive, rules[1].Status)
}
