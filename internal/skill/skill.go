// Package skill implements the content-transformation skills.
//
// A skill is a stateless, single-purpose function over its request plus
// at most one outbound provider call (context selection adds one vector
// search before its provider call). Provider failures never escape a
// skill as a Go error: they are converted into Result{Success: false}
// and the retry decision belongs to the caller.
package skill

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Request carries the input to one skill invocation.
type Request struct {
	Content      string         `json:"content"`
	ChapterID    string         `json:"chapter_id,omitempty"`
	SelectedText string         `json:"selected_text,omitempty"`
	Params       map[string]any `json:"parameters,omitempty"`
}

// BoolParam returns the named boolean parameter or def when absent.
func (r Request) BoolParam(name string, def bool) bool {
	if v, ok := r.Params[name].(bool); ok {
		return v
	}
	return def
}

// IntParam returns the named integer parameter or def when absent.
// JSON numbers arrive as float64 and are accepted when integral.
func (r Request) IntParam(name string, def int) int {
	switch v := r.Params[name].(type) {
	case int:
		return v
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return def
}

// StringParam returns the named string parameter or def when absent.
func (r Request) StringParam(name, def string) string {
	if v, ok := r.Params[name].(string); ok && v != "" {
		return v
	}
	return def
}

// FloatMapParam returns the named map of float parameters, or nil.
func (r Request) FloatMapParam(name string) map[string]float64 {
	switch v := r.Params[name].(type) {
	case map[string]float64:
		return v
	case map[string]any:
		out := make(map[string]float64, len(v))
		for k, raw := range v {
			f, ok := raw.(float64)
			if !ok {
				return nil
			}
			out[k] = f
		}
		return out
	}
	return nil
}

// Result is the outcome of one skill invocation. Success implies
// non-empty Content (or artifacts for non-transform skills); failure
// implies a non-empty Err and no Content.
type Result struct {
	Success   bool           `json:"success"`
	Content   string         `json:"content,omitempty"`
	Artifacts map[string]any `json:"artifacts,omitempty"`
	Err       string         `json:"error,omitempty"`
}

// Fail builds a failed result.
func Fail(format string, args ...any) Result {
	return Result{Err: fmt.Sprintf(format, args...)}
}

// Skill is a single content transformation.
type Skill interface {
	Name() string
	Invoke(ctx context.Context, req Request) Result
}

// Skill names. These appear verbatim in adaptations_applied lists.
const (
	NameSimplify         = "simplify_for_beginner"
	NameHardwareMapping  = "hardware_mapping"
	NameEnrichment       = "advanced_enrichment"
	NameRealWorldExample = "real_world_example"
	NameExamSummary      = "exam_summary"
	NameContextSelection = "context_selection"
	NameTranslation      = "translation"
	NameQuizGeneration   = "quiz_generation"
	NameValidation       = "validation"
)

// emptyContent reports whether content is blank after trimming.
func emptyContent(content string) bool {
	return strings.TrimSpace(content) == ""
}

// Registry holds named skills for lookup by orchestrators.
type Registry struct {
	skills map[string]Skill
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill)}
}

// Register adds a skill. Registering a duplicate name is an error.
func (r *Registry) Register(s Skill) error {
	if s == nil {
		return fmt.Errorf("skill is nil")
	}
	name := s.Name()
	if name == "" {
		return fmt.Errorf("skill has empty name")
	}
	if _, exists := r.skills[name]; exists {
		return fmt.Errorf("skill %q already registered", name)
	}
	r.skills[name] = s
	return nil
}

// Get returns the named skill.
func (r *Registry) Get(name string) (Skill, bool) {
	s, ok := r.skills[name]
	return s, ok
}

// Names returns registered skill names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
