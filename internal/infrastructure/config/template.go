package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Template formats accepted by WriteTemplate.
const (
	TemplateYAML = "yaml"
	TemplateTOML = "toml"
)

// ErrConfigExists is returned when init would overwrite a file.
var ErrConfigExists = errors.New("config file already exists")

// RenderTemplate encodes s in the given format.
func RenderTemplate(s Settings, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "", TemplateYAML:
		buf.WriteString("# scatslx settings\n")
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		buf.Write(data)
	case TemplateTOML:
		buf.WriteString("# scatslx settings\n")
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, fmt.Errorf("failed to encode TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported template format %q (use %s or %s)", format, TemplateYAML, TemplateTOML)
	}
	return buf.Bytes(), nil
}

// WriteTemplate validates s and writes it to path. An existing file is
// never overwritten.
func WriteTemplate(path, format string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := RenderTemplate(s, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return file.Close()
}
