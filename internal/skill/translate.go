package skill

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/bidi"
)

const translateSystem = `You translate robotics textbook content from English to Urdu.
Keep the markdown structure. Leave __CODE_BLOCK_N__ placeholders exactly
where they are. Use the provided glossary for technical terms; keep any
term not in the glossary in English, written as-is inside the Urdu text.`

// Right-to-left embedding marks wrapped around translated prose lines.
const (
	rleMark = "\u202b"
	pdfMark = "\u202c"
)

type translateOutput struct {
	Translated      string   `json:"translated"`
	GlossaryApplied []string `json:"glossary_applied"`
}

// Translate renders content into Urdu, preserving fenced code blocks
// byte-for-byte and wrapping translated prose in RTL embedding marks.
type Translate struct {
	gen *Generator
}

// NewTranslate creates the translation skill.
func NewTranslate(gen *Generator) *Translate {
	return &Translate{gen: gen}
}

func (t *Translate) Name() string { return NameTranslation }

func (t *Translate) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	text, blocks := extractFences(req.Content)

	var prompt strings.Builder
	if glossary, ok := req.Params["glossary"].(map[string]string); ok && len(glossary) > 0 {
		prompt.WriteString("Glossary (English = Urdu):\n")
		for term, urdu := range glossary {
			fmt.Fprintf(&prompt, "%s = %s\n", term, urdu)
		}
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Translate to Urdu:\n\n%s", text)

	out, err := GenerateObject[translateOutput](ctx, t.gen, translateSystem, prompt.String())
	if err != nil {
		return Fail("translation failed: %v", err)
	}
	if emptyContent(out.Translated) {
		return Fail("model returned empty translation")
	}

	translated := wrapRTL(out.Translated)
	translated = restoreFences(translated, blocks)

	return Result{
		Success: true,
		Content: translated,
		Artifacts: map[string]any{
			"glossary_applied": out.GlossaryApplied,
			"target_language":  "ur",
		},
	}
}

// wrapRTL wraps each right-to-left line in RLE/PDF marks so mixed Urdu
// and Latin technical terms render in the correct order. Placeholder
// and left-to-right lines pass through untouched.
func wrapRTL(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "__CODE_BLOCK_") {
			continue
		}

		var p bidi.Paragraph
		if _, err := p.SetString(trimmed); err != nil {
			continue
		}
		if p.IsLeftToRight() {
			continue
		}
		if !strings.HasPrefix(trimmed, rleMark) {
			lines[i] = strings.Replace(line, trimmed, rleMark+trimmed+pdfMark, 1)
		}
	}
	return strings.Join(lines, "\n")
}
