package parser

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseJSON decodes a JSON object into a map.
func ParseJSON(jsonText string) (map[string]interface{}, error) {
	var data map[string]interface{}

	err := json.Unmarshal([]byte(jsonText), &data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// DecodeJSON decodes any JSON value: objects become maps, arrays become
// slices and numbers become float64.
func DecodeJSON(jsonText string) (interface{}, error) {
	var data interface{}

	err := json.Unmarshal([]byte(jsonText), &data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// EncodeJSON encodes v without indentation.
func EncodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
