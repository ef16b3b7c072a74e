package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/meta"
)

// document is the on-disk form of a unit manifest.
type document struct {
	Name       string    `yaml:"name" toml:"name" json:"name"`
	Version    string    `yaml:"version" toml:"version" json:"version"`
	References []string  `yaml:"references" toml:"references" json:"references"`
	Types      []typeDoc `yaml:"types" toml:"types" json:"types"`
}

type typeDoc struct {
	Name       string      `yaml:"name" toml:"name" json:"name"`
	Namespace  string      `yaml:"namespace" toml:"namespace" json:"namespace"`
	Kind       string      `yaml:"kind" toml:"kind" json:"kind"`
	Visibility string      `yaml:"visibility" toml:"visibility" json:"visibility"`
	Doc        string      `yaml:"doc" toml:"doc" json:"doc"`
	Bases      []string    `yaml:"bases" toml:"bases" json:"bases"`
	Fields     []fieldDoc  `yaml:"fields" toml:"fields" json:"fields"`
	Methods    []methodDoc `yaml:"methods" toml:"methods" json:"methods"`
	Values     []valueDoc  `yaml:"values" toml:"values" json:"values"`
}

type fieldDoc struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Type     string `yaml:"type" toml:"type" json:"type"`
	Static   bool   `yaml:"static" toml:"static" json:"static"`
	ReadOnly bool   `yaml:"readonly" toml:"readonly" json:"readonly"`
	Doc      string `yaml:"doc" toml:"doc" json:"doc"`
}

type methodDoc struct {
	Name    string     `yaml:"name" toml:"name" json:"name"`
	Static  bool       `yaml:"static" toml:"static" json:"static"`
	Params  []paramDoc `yaml:"params" toml:"params" json:"params"`
	Returns []string   `yaml:"returns" toml:"returns" json:"returns"`
	Doc     string     `yaml:"doc" toml:"doc" json:"doc"`
}

type paramDoc struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Type     string `yaml:"type" toml:"type" json:"type"`
	Variadic bool   `yaml:"variadic" toml:"variadic" json:"variadic"`
	Optional bool   `yaml:"optional" toml:"optional" json:"optional"`
}

type valueDoc struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Value scalar `yaml:"value" toml:"value" json:"value"`
}

// scalar accepts a string, number or boolean and keeps its literal text.
type scalar string

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: expected a scalar value", node.Line)
	}
	*s = scalar(node.Value)
	return nil
}

func (s *scalar) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case string:
		*s = scalar(v)
	case int64, float64, bool:
		*s = scalar(fmt.Sprint(v))
	default:
		return errors.Newf("expected a scalar value, got %T", v)
	}
	return nil
}

func (s *scalar) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = scalar(str)
		return nil
	}
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&num); err == nil {
		*s = scalar(num.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return errors.Newf("expected a scalar value, got %s", data)
	}
	*s = scalar(fmt.Sprint(b))
	return nil
}

// decodeDocument parses data according to the extension of path. Unknown
// keys are rejected in every format.
func decodeDocument(path string, data []byte) (*document, error) {
	var doc document

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidManifest, "failed to parse yaml %s: %v", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidManifest, "failed to parse toml %s: %v", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Wrapf(errors.ErrInvalidManifest, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidManifest, "failed to parse json %s: %v", path, err)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidManifest, "%s: unsupported manifest extension", path)
	}

	return &doc, validate(path, &doc)
}

func validate(path string, doc *document) error {
	if strings.TrimSpace(doc.Name) == "" {
		return errors.Wrapf(errors.ErrInvalidManifest, "%s: unit name is required", path)
	}

	seen := make(map[string]bool)
	for i, t := range doc.Types {
		if strings.TrimSpace(t.Name) == "" {
			return errors.Wrapf(errors.ErrInvalidManifest, "%s: type #%d has no name", path, i+1)
		}
		if strings.Contains(t.Name, ".") {
			return errors.Wrapf(errors.ErrInvalidManifest, "%s: type name %q must not contain dots; use namespace", path, t.Name)
		}
		if t.Namespace != "" {
			if seg, bad := meta.BadSegment(t.Namespace); bad {
				err := errors.Mark(errors.Wrapf(errors.ErrInvalidManifest,
					"%s: type %s has namespace %q with segment %q", path, t.Name, t.Namespace, seg), errors.ErrInvalidNamespace)
				return errors.WithHint(err, "namespace segments must be non-empty and free of path separators and :*?\"<>|")
			}
		}
		q := qualify(t.Namespace, t.Name)
		if seen[q] {
			return errors.Wrapf(errors.ErrInvalidManifest, "%s: type %s declared twice", path, q)
		}
		seen[q] = true

		switch strings.ToLower(t.Visibility) {
		case "", "public", "internal", "private":
		default:
			return errors.Wrapf(errors.ErrInvalidManifest, "%s: type %s has unknown visibility %q", path, q, t.Visibility)
		}
	}
	return nil
}

func qualify(namespace, name string) string {
	namespace = strings.Trim(namespace, ".")
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
