package config

import (
	"bytes"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/types"
)

// Decode converts feature options into out, which must be a pointer.
// Fields are matched by their koanf tag; strings are weakly converted to
// numbers, booleans, durations and comma separated slices.
func Decode(options any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "koanf",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create options decoder")
	}
	if err := decoder.Decode(options); err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "invalid feature options")
	}
	return nil
}

// Format is a configuration serialization format
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown config format %q", s)
	}
}

// Encode serializes cfg. YAML output keeps key order; TOML output is sorted.
func Encode(cfg *types.Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return encodeYAML(cfg)
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg.ToMap()); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to encode config as toml")
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown config format %q", format)
	}
}

func encodeYAML(cfg *types.Config) ([]byte, error) {
	doc := &yamlv3.Node{Kind: yamlv3.MappingNode}
	for _, key := range cfg.Keys() {
		value, _ := cfg.Get(key)

		var valueNode yamlv3.Node
		if err := valueNode.Encode(value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "failed to encode %q", key)
		}
		doc.Content = append(doc.Content,
			&yamlv3.Node{Kind: yamlv3.ScalarNode, Tag: "!!str", Value: key},
			&valueNode,
		)
	}

	var buf bytes.Buffer
	enc := yamlv3.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to encode config as yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to encode config as yaml")
	}
	return buf.Bytes(), nil
}
