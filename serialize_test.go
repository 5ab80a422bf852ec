package apptest

import (
	"net/url"
	"testing"

	"github.com/William9923/go-apptest/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_serializeBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        interface{}
		want        string
	}{
		{"nil body", "application/json", nil, ""},
		{"string verbatim", "application/json", "raw text", "raw text"},
		{"bytes verbatim", "text/plain", []byte("bytes"), "bytes"},
		{"json map", "application/json", map[string]interface{}{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"json with params", "application/json;charset=utf8", map[string]string{"title": "日本語"}, `{"title":"日本語"}`},
		{"json ordered fields", "application/json", Fields{{"z", 1}, {"a", Fields{{"y", true}, {"b", nil}}}}, `{"z":1,"a":{"y":true,"b":null}}`},
		{"form map", "application/x-www-form-urlencoded", map[string]interface{}{"title": "a b", "done": true}, "done=1&title=a+b"},
		{"form ordered fields", "multipart/form-data", Fields{{"z", "1"}, {"a", "2"}}, "z=1&a=2"},
		{"form url values", "application/x-www-form-urlencoded", url.Values{"a": {"1", "2"}}, "a=1&a=2"},
		{"form nested", "application/x-www-form-urlencoded", map[string]interface{}{"a": map[string]interface{}{"b": "c"}, "l": []interface{}{"x", nil, 2}}, "a%5Bb%5D=c&l%5B0%5D=x&l%5B2%5D=2"},
		{"form with params is unsupported", "application/x-www-form-urlencoded; charset=utf-8", map[string]string{"a": "1"}, ""},
		{"unsupported content type", "text/xml", map[string]string{"a": "1"}, ""},
		{"unsupported body type", "application/json", 42, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := serializeBody(tt.contentType, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_serializeBody_RoundTrip(t *testing.T) {
	body := map[string]interface{}{"title": "日本語", "note": "a&b=c"}

	encoded, err := serializeBody("application/json", body)
	require.NoError(t, err)
	decoded, err := parser.ParseJSON(encoded)
	require.NoError(t, err)
	assert.Equal(t, body, decoded)

	encoded, err = serializeBody("application/x-www-form-urlencoded", body)
	require.NoError(t, err)
	form, err := parser.ParseForm(encoded)
	require.NoError(t, err)
	assert.Equal(t, body, form)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "", BuildQuery("scalar"))
	assert.Equal(t, "tags%5B0%5D=a&tags%5B1%5D=b", BuildQuery(map[string]interface{}{"tags": []string{"a", "b"}}))
}
