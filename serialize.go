package apptest

import (
	"bytes"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/William9923/go-apptest/parser"
)

// Field is one key/value pair of Fields.
type Field struct {
	Key   string
	Value interface{}
}

// Fields is an ordered mapping. It keeps its order when encoded as JSON or as
// a form body, which a Go map cannot.
type Fields []Field

// MarshalJSON encodes the fields as a JSON object in order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := parser.EncodeJSON(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := parser.EncodeJSON(field.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteString(key)
		buf.WriteByte(':')
		buf.WriteString(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// serializeBody turns the body argument into the raw payload for the given
// content type. Unsupported combinations yield an empty payload.
func serializeBody(contentType string, body interface{}) (string, error) {
	switch b := body.(type) {
	case nil:
		return "", nil
	case string:
		return b, nil
	case []byte:
		return string(b), nil
	}

	if !isMapping(body) {
		return "", nil
	}

	if strings.HasPrefix(contentType, "application/json") {
		return parser.EncodeJSON(body)
	}
	if in(contentType, parsedFormBodyMimeTypes) {
		return BuildQuery(body), nil
	}
	return "", nil
}

func isMapping(body interface{}) bool {
	switch body.(type) {
	case Fields, map[string]interface{}, map[string]string, url.Values:
		return true
	}
	return false
}

// BuildQuery encodes a mapping as an url encoded form. Fields keep their
// order, maps are sorted by key. Nested maps and slices use the bracket
// notation (a[b]=1, a[0]=x), nil values are skipped and booleans become 1 or 0.
func BuildQuery(body interface{}) string {
	var pairs []string
	appendQuery(&pairs, "", body)
	return strings.Join(pairs, "&")
}

func appendQuery(pairs *[]string, prefix string, value interface{}) {
	key := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "[" + k + "]"
	}

	switch v := value.(type) {
	case nil:
	case Fields:
		for _, field := range v {
			appendQuery(pairs, key(field.Key), field.Value)
		}
	case map[string]interface{}:
		for _, k := range sortedKeys(v) {
			appendQuery(pairs, key(k), v[k])
		}
	case map[string]string:
		for _, k := range sortedKeys(v) {
			appendQuery(pairs, key(k), v[k])
		}
	case url.Values:
		for _, k := range sortedKeys(v) {
			for _, val := range v[k] {
				appendQuery(pairs, key(k), val)
			}
		}
	case []interface{}:
		for i, item := range v {
			appendQuery(pairs, key(strconv.Itoa(i)), item)
		}
	case []string:
		for i, item := range v {
			appendQuery(pairs, key(strconv.Itoa(i)), item)
		}
	default:
		if prefix == "" {
			return
		}
		*pairs = append(*pairs, url.QueryEscape(prefix)+"="+url.QueryEscape(formValue(v)))
	}
}

func formValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

func sortedKeys[V any](m map[string]V) []string {
	result := keys(m)
	sort.Strings(result)
	return result
}
