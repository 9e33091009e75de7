package anthropicApi

import (
	"encoding/json"
	"testing"

	"github.com/KotFed0t/invest_assistant/internal/model/aiModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJson(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare json",
			in:   `{"action": "BUY"}`,
			want: `{"action": "BUY"}`,
		},
		{
			name: "fenced json",
			in:   "```json\n{\"action\": \"BUY\"}\n```",
			want: `{"action": "BUY"}`,
		},
		{
			name: "fenced without language tag",
			in:   "```\n{\"action\": \"HOLD\"}\n```",
			want: `{"action": "HOLD"}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n{\"action\": \"SELL\"}\n  ",
			want: `{"action": "SELL"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJson(tt.in))
		})
	}
}

func TestExtractJsonUnmarshalsAnalysis(t *testing.T) {
	raw := "```json\n{\"symbol\": \"AAPL\", \"action\": \"BUY\", \"confidence\": \"HIGH\", \"reason\": \"strong earnings\", \"targetPrice\": 210.5}\n```"

	var analysis aiModel.StockAnalysis
	err := json.Unmarshal([]byte(extractJson(raw)), &analysis)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", analysis.Symbol)
	assert.Equal(t, "BUY", analysis.Action)
	assert.Equal(t, "HIGH", analysis.Confidence)
	assert.Equal(t, "strong earnings", analysis.Reason)
	require.NotNil(t, analysis.TargetPrice)
	assert.InDelta(t, 210.5, *analysis.TargetPrice, 0.0001)
	assert.Nil(t, analysis.Allocation)
}
