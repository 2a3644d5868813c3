package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/forge/pkg/core"
)

// Serializer defines how to write (and read back) one use case in a file format.
type Serializer interface {
	// Serialize converts the use case to bytes.
	Serialize(doc core.UseCase) ([]byte, error)
	// Parse reads a use case written by Serialize.
	Parse(r io.Reader) (core.UseCase, error)
}

// DefaultSerializers returns the standard set of serializers, keyed by extension.
// The Markdown serializer renders its body with renderer.
func DefaultSerializers(renderer core.Renderer) map[string]Serializer {
	return map[string]Serializer{
		".md":   NewMarkdownSerializer(renderer),
		".json": NewJSONSerializer(),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// --- JSON Serializer ---

// JSONSerializer writes the record in its storage shape, indented.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.UseCase, error) {
	var doc core.UseCase
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.UseCase{}, fmt.Errorf("invalid json: %w", err)
	}
	return doc.Clone(), nil
}

func (s *JSONSerializer) Serialize(doc core.UseCase) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Clone(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// --- YAML Serializer ---

type YAMLSerializer struct{}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.UseCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.UseCase{}, err
	}

	var doc core.UseCase
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.UseCase{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return doc.Clone(), nil
}

func (s *YAMLSerializer) Serialize(doc core.UseCase) ([]byte, error) {
	return encodeYAML(doc.Clone())
}

// --- Markdown Serializer ---

// MarkdownSerializer writes the rendered document under a YAML frontmatter
// holding the record itself, so the file reads well and still parses back.
type MarkdownSerializer struct {
	Renderer core.Renderer
}

// NewMarkdownSerializer creates a new Markdown serializer.
func NewMarkdownSerializer(renderer core.Renderer) *MarkdownSerializer {
	return &MarkdownSerializer{Renderer: renderer}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (core.UseCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.UseCase{}, err
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(data, []byte("---\n")) {
		return core.UseCase{}, errors.New("missing frontmatter")
	}

	rest := data[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return core.UseCase{}, errors.New("frontmatter started but no closing delimiter found")
	}

	var doc core.UseCase
	if err := yaml.Unmarshal(rest[:end], &doc); err != nil {
		return core.UseCase{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return doc.Clone(), nil
}

func (s *MarkdownSerializer) Serialize(doc core.UseCase) ([]byte, error) {
	front, err := encodeYAML(doc.Clone())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")
	buf.WriteString(s.Renderer.Render(doc))
	return buf.Bytes(), nil
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
