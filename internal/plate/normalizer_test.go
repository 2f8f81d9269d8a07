package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical with noise", "mh 01-ab 1234", "MH01AB1234"},
		{"canonical single series letter", "ka05m9999", "KA05M9999"},
		{"already clean", "MH01AB1234", "MH01AB1234"},
		{"too short", "X", Unknown},
		{"four chars", "AB12", Unknown},
		{"empty", "", Unknown},
		{"plausible length kept", "ABCD1234", "ABCD1234"},
		{"long malformed kept as-is", "ABC123456789XYZ", "ABC123456789XYZ"},
		{"five chars malformed kept", "AB12C", "AB12C"},
		{"punctuation only", "--..--", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("MH01AB1234"))
	assert.True(t, IsCanonical("KA05M9999"))
	assert.False(t, IsCanonical("ABCD1234"))
	assert.False(t, IsCanonical("mh01ab1234"))
}

func TestBest(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)

	best, ok := Best([]Candidate{
		{Text: "MH01AB1234", Confidence: 0.70},
		{Text: "MH01A81234", Confidence: 0.92},
		{Text: "MHO1AB1234", Confidence: 0.50},
	})
	assert.True(t, ok)
	assert.Equal(t, "MH01A81234", best.Text)
}

func TestBestTieKeepsFirst(t *testing.T) {
	best, ok := Best([]Candidate{
		{Text: "FIRST1234", Confidence: 0.80},
		{Text: "SECOND1234", Confidence: 0.80},
	})
	assert.True(t, ok)
	assert.Equal(t, "FIRST1234", best.Text)
}

func TestNormalizeBest(t *testing.T) {
	assert.Equal(t, Unknown, NormalizeBest(nil))

	// Selection happens before normalization: the highest-confidence
	// candidate wins even when a lower one would normalize better.
	assert.Equal(t, Unknown, NormalizeBest([]Candidate{
		{Text: "xx", Confidence: 0.99},
		{Text: "mh 01 ab 1234", Confidence: 0.10},
	}))

	assert.Equal(t, "MH01AB1234", NormalizeBest([]Candidate{
		{Text: "mh 01 ab 1234", Confidence: 0.90},
		{Text: "zz", Confidence: 0.50},
	}))
}
