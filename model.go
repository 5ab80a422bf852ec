package apptest

import "gopkg.in/yaml.v2"

// Scenario is a request and the rules its response must satisfy, as read from
// a YAML scenario file:
//
//	name: create todo
//	method: POST
//	url: /todos
//	json: true
//	headers:
//	  X-My-Custom: test
//	body:
//	  title: 日本語
//	files:
//	  uploadfile: testdata/upload.txt
//	expect:
//	  - status == 201
//	  - body.title == "日本語"
type Scenario struct {
	Name    string                 `yaml:"name"`
	Method  string                 `yaml:"method"`
	URL     string                 `yaml:"url"`
	JSON    bool                   `yaml:"json"`
	Headers map[string]string      `yaml:"headers"`
	Body    interface{}            `yaml:"-"`
	Files   map[string]interface{} `yaml:"files"`
	Expect  []string               `yaml:"expect"`

	// deferred field
	source string
}

// Source returns the file the scenario was loaded from.
func (s Scenario) Source() string {
	return s.source
}

// scenarioBody decodes the body section keeping the mapping order of the file.
type scenarioBody struct {
	value interface{}
}

func (b *scenarioBody) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ordered yaml.MapSlice
	if err := unmarshal(&ordered); err == nil {
		b.value = ordered
		return nil
	}

	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	b.value = v
	return nil
}
