package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, ParseHeaders(""))
	assert.Nil(t, ParseHeaders("broken, =x"))
	assert.Equal(t, map[string]string{"api-key": "abc", "x-team": "crm"}, ParseHeaders(" api-key=abc , x-team=crm,"))
}

func TestSampleRatioBounds(t *testing.T) {
	assert.Equal(t, 0.1, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(3))
	assert.Equal(t, 0.5, sampleRatio(0.5))
}
