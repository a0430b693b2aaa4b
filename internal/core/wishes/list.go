// Package wishes selects daily-bounded random samples from a static phrase list.
package wishes

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinListSize is the smallest list that can satisfy a full draw.
const MinListSize = MaxPerDraw

// ErrTooFewWishes is returned when a list cannot satisfy a draw.
var ErrTooFewWishes = errors.New("too few wishes")

// List is an immutable ordered set of phrases.
type List struct {
	items []string
}

// NewList builds a List from items. Surrounding whitespace is trimmed and
// blank entries are dropped. Lists shorter than MinListSize are rejected.
func NewList(items []string) (List, error) {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		cleaned = append(cleaned, item)
	}

	if len(cleaned) < MinListSize {
		return List{}, fmt.Errorf("%w: have %d, need at least %d", ErrTooFewWishes, len(cleaned), MinListSize)
	}

	return List{items: cleaned}, nil
}

// Len returns the number of phrases.
func (l List) Len() int {
	return len(l.items)
}

// Items returns a copy of the phrases.
func (l List) Items() []string {
	return append([]string(nil), l.items...)
}

// Contains reports whether s is one of the phrases.
func (l List) Contains(s string) bool {
	for _, item := range l.items {
		if item == s {
			return true
		}
	}
	return false
}

// LoadFile reads a wish list from disk. Files ending in .yaml or .yml hold
// either a sequence of strings or a mapping with a "wishes" sequence. Any
// other file is read as one phrase per line; lines starting with # are
// comments.
func LoadFile(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return List{}, fmt.Errorf("read wish list: %w", err)
	}

	var items []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		items, err = parseYAML(data)
	default:
		items, err = parseLines(data)
	}
	if err != nil {
		return List{}, fmt.Errorf("parse wish list %s: %w", path, err)
	}

	return NewList(items)
}

func parseYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var items []string
		if err := root.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var doc struct {
		Wishes []string `yaml:"wishes"`
	}
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Wishes, nil
}

func parseLines(data []byte) ([]string, error) {
	var items []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, line)
	}

	return items, scanner.Err()
}
