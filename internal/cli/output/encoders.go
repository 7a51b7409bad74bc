package output

import (
	"bytes"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONFormatter writes indented JSON. Message text is written as-is, so
// <, > and & are not escaped.
type JSONFormatter struct{}

// Format implements Formatter.
func (*JSONFormatter) Format(w io.Writer, data any) error {
	raw, err := marshalJSON(data)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func marshalJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAMLFormatter writes block-style YAML. Keys keep their JSON names and
// order, so both formats show the same document.
type YAMLFormatter struct{}

// Format implements Formatter.
func (*YAMLFormatter) Format(w io.Writer, data any) error {
	raw, err := marshalJSON(data)
	if err != nil {
		return err
	}
	// JSON is flow-style YAML; a node tree preserves key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	toBlock(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

func toBlock(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		toBlock(c)
	}
}
