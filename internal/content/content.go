// Package content loads the chapter catalog from disk.
//
// Each chapter is a YAML descriptor next to a markdown body file. The
// catalog is loaded once at startup and treated as immutable afterwards.
package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlossaryEntry maps an English technical term to its Urdu rendering.
type GlossaryEntry struct {
	Term string `yaml:"term" json:"term"`
	Urdu string `yaml:"urdu" json:"urdu"`
}

// Chapter is one unit of textbook content.
type Chapter struct {
	ID       string          `yaml:"id" json:"id"`
	Title    string          `yaml:"title" json:"title"`
	Version  string          `yaml:"version" json:"version"`
	BodyFile string          `yaml:"body" json:"-"`
	Glossary []GlossaryEntry `yaml:"glossary,omitempty" json:"glossary,omitempty"`

	// Body is the markdown content, loaded from BodyFile.
	Body string `yaml:"-" json:"-"`
}

// ContainsSpan reports whether text appears verbatim in the chapter body.
// Used to check that a selected span actually belongs to the chapter it
// claims to come from.
func (c Chapter) ContainsSpan(text string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(c.Body, text)
}

// Catalog is the set of loaded chapters, keyed by chapter ID.
type Catalog struct {
	chapters map[string]Chapter
}

// Load reads every *.yaml descriptor under dir and its referenced body
// file. Duplicate chapter IDs are an error.
func Load(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir: %w", err)
	}

	catalog := &Catalog{chapters: make(map[string]Chapter)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		ch, err := loadChapter(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		if _, exists := catalog.chapters[ch.ID]; exists {
			return nil, fmt.Errorf("duplicate chapter id %q in %s", ch.ID, entry.Name())
		}
		catalog.chapters[ch.ID] = ch
	}
	return catalog, nil
}

func loadChapter(path string) (Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Chapter{}, err
	}

	var ch Chapter
	if err := yaml.Unmarshal(data, &ch); err != nil {
		return Chapter{}, fmt.Errorf("parsing descriptor: %w", err)
	}
	if ch.ID == "" {
		return Chapter{}, fmt.Errorf("descriptor has no id")
	}
	if ch.Title == "" {
		return Chapter{}, fmt.Errorf("chapter %s has no title", ch.ID)
	}
	if ch.Version == "" {
		ch.Version = "1"
	}
	if ch.BodyFile == "" {
		return Chapter{}, fmt.Errorf("chapter %s has no body file", ch.ID)
	}

	body, err := os.ReadFile(filepath.Join(filepath.Dir(path), ch.BodyFile))
	if err != nil {
		return Chapter{}, fmt.Errorf("reading body for %s: %w", ch.ID, err)
	}
	ch.Body = string(body)
	return ch, nil
}

// Get returns the chapter with the given ID.
func (c *Catalog) Get(id string) (Chapter, bool) {
	ch, ok := c.chapters[id]
	return ch, ok
}

// IDs returns all chapter IDs in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.chapters))
	for id := range c.chapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded chapters.
func (c *Catalog) Len() int {
	return len(c.chapters)
}
