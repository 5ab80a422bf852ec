package parser

import "net/url"

// ParseForm decodes an url encoded form body. Repeated keys keep the last value.
func ParseForm(formText string) (map[string]interface{}, error) {
	values, err := url.ParseQuery(formText)
	if err != nil {
		return nil, err
	}

	data := make(map[string]interface{}, len(values))
	for name, vals := range values {
		data[name] = vals[len(vals)-1]
	}

	return data, nil
}
