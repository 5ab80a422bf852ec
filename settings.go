package apptest

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultResponseChunkSize is the number of bytes read per chunk when a
	// response body is drained into memory.
	DefaultResponseChunkSize = 4096

	// DefaultHTTPVersion is the protocol version of a fresh response.
	DefaultHTTPVersion = "1.1"
)

// Settings holds the application level configuration the client consults.
type Settings struct {
	ResponseChunkSize int    `yaml:"response_chunk_size"`
	HTTPVersion       string `yaml:"http_version"`
}

// DefaultSettings returns the settings used when an application carries none.
func DefaultSettings() Settings {
	return Settings{
		ResponseChunkSize: DefaultResponseChunkSize,
		HTTPVersion:       DefaultHTTPVersion,
	}
}

// LoadSettings reads settings from a YAML file. Missing or invalid fields
// fall back to DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "read settings")
	}

	var settings Settings
	if err := yaml.Unmarshal(f, &settings); err != nil {
		return Settings{}, errors.Wrapf(err, "parse settings %s", path)
	}

	return settings.withDefaults(), nil
}

func (s Settings) withDefaults() Settings {
	if s.ResponseChunkSize <= 0 {
		s.ResponseChunkSize = DefaultResponseChunkSize
	}
	if s.HTTPVersion == "" {
		s.HTTPVersion = DefaultHTTPVersion
	}
	return s
}

// settingsOf returns the settings of app, or the defaults when app does not
// implement Configurer.
func settingsOf(app Application) Settings {
	if c, ok := app.(Configurer); ok {
		return c.Settings().withDefaults()
	}
	return DefaultSettings()
}
