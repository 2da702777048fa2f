// Package yamlutil is the one place that imports the YAML library. It
// decodes the site config and the front matter of prose pages.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a single document, 1 MiB by default.
var MaxInputSize = 1 << 20

var (
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Unmarshal decodes data into v. Unknown keys are ignored and empty input
// leaves v untouched.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict is Unmarshal that fails on unknown keys, so a misspelled
// config key is reported instead of silently ignored.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	switch {
	case v == nil:
		return ErrNilDestination
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case len(strings.TrimSpace(string(data))) == 0:
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

const fence = "---"

func isFence(line string) bool {
	return strings.TrimRight(line, " \t\r") == fence
}

// SplitFrontMatter separates a leading "---" fenced YAML block from a
// Markdown page. meta is nil when the page does not open with a fence or
// the block is never closed, and body is then the whole input.
func SplitFrontMatter(content string) (meta []byte, body string) {
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || !isFence(first) {
		return nil, content
	}
	for offset := 0; ; {
		line, _, more := strings.Cut(rest[offset:], "\n")
		if isFence(line) {
			block := strings.TrimSuffix(rest[:offset], "\n")
			return []byte(block), rest[min(offset+len(line)+1, len(rest)):]
		}
		if !more {
			return nil, content
		}
		offset += len(line) + 1
	}
}
