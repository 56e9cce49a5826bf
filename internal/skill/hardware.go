package skill

import (
	"context"
	"fmt"
)

const hardwareSystem = `You adapt robotics textbook content for readers with a hardware
and electronics background. Relate software concepts to their physical
counterparts: topics to signal buses, nodes to microcontrollers, message
rates to sampling rates. Keep the original structure and meaning.`

type hardwareOutput struct {
	Adapted       string   `json:"adapted"`
	HardwareNotes []string `json:"hardware_notes"`
}

// HardwareMapping reframes content in terms of physical hardware for
// learners with an electronics background.
type HardwareMapping struct {
	gen *Generator
}

// NewHardwareMapping creates the hardware mapping skill.
func NewHardwareMapping(gen *Generator) *HardwareMapping {
	return &HardwareMapping{gen: gen}
}

func (h *HardwareMapping) Name() string { return NameHardwareMapping }

func (h *HardwareMapping) Invoke(ctx context.Context, req Request) Result {
	if emptyContent(req.Content) {
		return Fail("content is empty")
	}

	prompt := fmt.Sprintf("Adapt the following for a hardware-oriented reader:\n\n%s", req.Content)
	out, err := GenerateObject[hardwareOutput](ctx, h.gen, hardwareSystem, prompt)
	if err != nil {
		return Fail("hardware mapping failed: %v", err)
	}
	if emptyContent(out.Adapted) {
		return Fail("model returned empty adaptation")
	}

	return Result{
		Success: true,
		Content: out.Adapted,
		Artifacts: map[string]any{
			"hardware_notes": out.HardwareNotes,
		},
	}
}
