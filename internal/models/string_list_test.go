package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"go", "sql"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["go","sql"]`, v)
}

func TestStringListScanFallsBackToEmpty(t *testing.T) {
	cases := map[string]interface{}{
		"nil":       nil,
		"blank":     "   ",
		"malformed": "[not json",
		"object":    []byte(`{"a":1}`),
		"null":      "null",
		"number":    42,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			var l StringList
			require.NoError(t, l.Scan(src))
			assert.NotNil(t, l)
			assert.Empty(t, l)
		})
	}
}

func TestStringListScanDecodes(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringList{"a", "b"}, l)
}

func TestStringListMarshalNilAsEmptyArray(t *testing.T) {
	b, err := json.Marshal(struct {
		Tags StringList `json:"tags"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[]}`, string(b))
}
