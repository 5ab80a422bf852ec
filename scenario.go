package apptest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ScenarioLoader reads scenario files from a directory.
type ScenarioLoader struct {
	dir       string
	scenarios []Scenario
	isLoaded  atomic.Bool
}

// NewScenarioLoader checks that dir exists and returns a loader for it.
func NewScenarioLoader(dir string) (*ScenarioLoader, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, err
	}
	return &ScenarioLoader{
		dir:       dir,
		scenarios: []Scenario{},
	}, nil
}

// Load reads every regular file of the directory, in name order. A loader
// loads once; later calls return ErrScenariosLoaded.
func (l *ScenarioLoader) Load() ([]Scenario, error) {
	if l.isLoaded.Load() {
		return nil, ErrScenariosLoaded
	}

	fileItems, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	for _, item := range fileItems {
		if item.IsDir() {
			continue
		}

		path := filepath.Join(l.dir, item.Name())
		f, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var scenario Scenario
		err = yaml.Unmarshal(f, &scenario)
		if err != nil {
			return nil, errors.Wrapf(err, "parse scenario %s", path)
		}
		var payload struct {
			Body scenarioBody `yaml:"body"`
		}
		if err := yaml.Unmarshal(f, &payload); err != nil {
			return nil, errors.Wrapf(err, "parse scenario body %s", path)
		}
		scenario.Body = normalizeYAML(payload.Body.value)
		scenario.source = path

		l.scenarios = append(l.scenarios, scenario)
	}

	l.isLoaded.Store(true)
	return l.scenarios, nil
}

// LoadScenarios reads all scenario files in dir.
func LoadScenarios(dir string) ([]Scenario, error) {
	loader, err := NewScenarioLoader(dir)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

// Play runs the scenario request and checks its rules in order. The first
// rule that does not hold is reported with ErrRuleNotSatisfied.
func (c *Client) Play(ctx context.Context, s Scenario) (*ExtraResponse, error) {
	headers := make(map[string]string, len(s.Headers)+1)
	for name, value := range s.Headers {
		headers[name] = value
	}
	if s.JSON {
		if _, ok := lookupHeader(headers, "Content-Type"); !ok {
			headers["Content-Type"] = jsonContentType
		}
	}

	files, err := scenarioFiles(s)
	if err != nil {
		return nil, err
	}

	resp, err := c.RequestWithContext(ctx, s.Method, s.URL, s.Body, headers, files)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %q", s.Name)
	}

	for _, rule := range s.Expect {
		ok, err := resp.Satisfies(rule)
		if err != nil {
			return resp, errors.Wrapf(err, "scenario %q", s.Name)
		}
		if !ok {
			return resp, errors.Wrapf(ErrRuleNotSatisfied, "scenario %q: %s", s.Name, rule)
		}
	}
	return resp, nil
}

// scenarioFiles turns the files section into upload descriptors. A field
// holds a path or a list of paths; relative paths are resolved against the
// scenario file.
func scenarioFiles(s Scenario) (Files, error) {
	if len(s.Files) == 0 {
		return nil, nil
	}

	resolve := func(path string) string {
		if filepath.IsAbs(path) || s.source == "" {
			return path
		}
		return filepath.Join(filepath.Dir(s.source), path)
	}

	files := make(Files, len(s.Files))
	for _, field := range sortedKeys(s.Files) {
		switch v := s.Files[field].(type) {
		case string:
			d, err := GenerateUploadFile(resolve(v))
			if err != nil {
				return nil, err
			}
			files[field] = d
		case []interface{}:
			paths := make([]string, 0, len(v))
			for _, p := range v {
				paths = append(paths, resolve(fmt.Sprint(p)))
			}
			multi, err := GenerateUploadFiles(paths)
			if err != nil {
				return nil, err
			}
			files[field] = multi
		default:
			return nil, fmt.Errorf("scenario %q: unsupported files entry %q", s.Name, field)
		}
	}
	return files, nil
}

// normalizeYAML converts the mappings produced by yaml.v2 into Fields so
// that bodies encode as JSON and as forms.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case yaml.MapSlice:
		fields := make(Fields, 0, len(val))
		for _, item := range val {
			fields = append(fields, Field{Key: fmt.Sprint(item.Key), Value: normalizeYAML(item.Value)})
		}
		return fields
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(val))
		byKey := make(map[string]interface{}, len(val))
		for k, item := range val {
			key := fmt.Sprint(k)
			keys = append(keys, key)
			byKey[key] = normalizeYAML(item)
		}
		sort.Strings(keys)
		fields := make(Fields, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, Field{Key: key, Value: byKey[key]})
		}
		return fields
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	}
	return v
}
