package orchestrator

import (
	"context"
	"reflect"
	"testing"

	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/skill"
)

// stubSkill is a canned skill for orchestration tests.
type stubSkill struct {
	name    string
	fail    bool
	suffix  string
	invoked int
	lastReq skill.Request
}

func (s *stubSkill) Name() string { return s.name }

func (s *stubSkill) Invoke(_ context.Context, req skill.Request) skill.Result {
	s.invoked++
	s.lastReq = req
	if s.fail {
		return skill.Fail("stub failure")
	}
	return skill.Result{
		Success:   true,
		Content:   req.Content + s.suffix,
		Artifacts: map[string]any{s.name + "_artifact": true},
	}
}

func registryWith(t *testing.T, skills ...skill.Skill) *skill.Registry {
	t.Helper()
	r := skill.NewRegistry()
	for _, s := range skills {
		if err := r.Register(s); err != nil {
			t.Fatalf("Register(%s): %v", s.Name(), err)
		}
	}
	return r
}

func TestChainFoldsInOrder(t *testing.T) {
	a := &stubSkill{name: "a", suffix: "+a"}
	b := &stubSkill{name: "b", suffix: "+b"}

	res := Chain{Steps: []Step{{Skill: a}, {Skill: b}}}.Run(context.Background(), "base", "ch01", nil)

	if res.Content != "base+a+b" {
		t.Errorf("content = %q, want fold output", res.Content)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(res.AdaptationsApplied, want) {
		t.Errorf("adaptations = %v, want %v", res.AdaptationsApplied, want)
	}
	if b.lastReq.Content != "base+a" {
		t.Errorf("second step saw %q, want output of first", b.lastReq.Content)
	}
	if a.lastReq.ChapterID != "ch01" {
		t.Errorf("chapter id not forwarded: %q", a.lastReq.ChapterID)
	}
}

func TestChainSkipsFailedStep(t *testing.T) {
	a := &stubSkill{name: "a", fail: true}
	b := &stubSkill{name: "b", suffix: "+b"}

	res := Chain{Steps: []Step{{Skill: a}, {Skill: b}}}.Run(context.Background(), "base", "", nil)

	if !res.Success {
		t.Error("chain must stay successful through a failed step")
	}
	if res.Content != "base+b" {
		t.Errorf("content = %q, failed step should be skipped", res.Content)
	}
	if want := []string{"b"}; !reflect.DeepEqual(res.AdaptationsApplied, want) {
		t.Errorf("adaptations = %v, want %v", res.AdaptationsApplied, want)
	}
}

func TestChainShortCircuit(t *testing.T) {
	a := &stubSkill{name: "a", fail: true}
	b := &stubSkill{name: "b", suffix: "+b"}

	res := Chain{Steps: []Step{{Skill: a}, {Skill: b}}, ShortCircuit: true}.Run(context.Background(), "base", "", nil)

	if res.Content != "base" {
		t.Errorf("content = %q, want original after short circuit", res.Content)
	}
	if b.invoked != 0 {
		t.Error("short circuit must stop the chain before later steps")
	}
}

func TestPersonalizeBeginner(t *testing.T) {
	simplify := &stubSkill{name: skill.NameSimplify, suffix: " (simplified)"}
	p, err := NewPersonalizer(registryWith(t, simplify), nil)
	if err != nil {
		t.Fatal(err)
	}

	res := p.Personalize(context.Background(), "ROS2 uses DDS...",
		profile.Profile{SkillLevel: profile.SkillLevelBeginner}, nil)

	if !res.Success {
		t.Error("personalization should succeed")
	}
	if want := []string{skill.NameSimplify}; !reflect.DeepEqual(res.AdaptationsApplied, want) {
		t.Errorf("adaptations = %v, want %v", res.AdaptationsApplied, want)
	}
	if res.Content != "ROS2 uses DDS... (simplified)" {
		t.Errorf("content = %q", res.Content)
	}
	if res.Metadata["strategy"] != string(profile.StrategyBeginner) {
		t.Errorf("strategy metadata = %v", res.Metadata["strategy"])
	}
}

func TestPersonalizeDefaultIsPassThrough(t *testing.T) {
	simplify := &stubSkill{name: skill.NameSimplify}
	p, err := NewPersonalizer(registryWith(t, simplify), nil)
	if err != nil {
		t.Fatal(err)
	}

	res := p.Personalize(context.Background(), "unchanged", profile.Profile{}, nil)

	if !res.Success {
		t.Error("default strategy should succeed")
	}
	if res.Content != "unchanged" || len(res.AdaptationsApplied) != 0 {
		t.Errorf("default strategy transformed content: %+v", res)
	}
	if simplify.invoked != 0 {
		t.Error("default strategy must not invoke skills")
	}
}

func TestPersonalizeDegradesOnSkillFailure(t *testing.T) {
	failing := &stubSkill{name: skill.NameSimplify, fail: true}
	p, err := NewPersonalizer(registryWith(t, failing), nil)
	if err != nil {
		t.Fatal(err)
	}

	res := p.Personalize(context.Background(), "original",
		profile.Profile{SkillLevel: profile.SkillLevelBeginner}, nil)

	if !res.Success {
		t.Error("skill failure must not fail the orchestration")
	}
	if res.Content != res.OriginalContent {
		t.Errorf("content = %q, want original on degradation", res.Content)
	}
	if len(res.AdaptationsApplied) != 0 {
		t.Errorf("adaptations = %v, want empty", res.AdaptationsApplied)
	}
}

func TestPersonalizeStrategyRouting(t *testing.T) {
	tests := []struct {
		name        string
		prof        profile.Profile
		wantSkills  []string
		wantContent string
	}{
		{
			"hardware maps then exemplifies",
			profile.Profile{Background: profile.BackgroundHardware},
			[]string{skill.NameHardwareMapping, skill.NameRealWorldExample},
			"c+hw+ex",
		},
		{
			"advanced enriches",
			profile.Profile{SkillLevel: profile.SkillLevelAdvanced},
			[]string{skill.NameEnrichment},
			"c+adv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw := &stubSkill{name: skill.NameHardwareMapping, suffix: "+hw"}
			example := &stubSkill{name: skill.NameRealWorldExample, suffix: "+ex"}
			enrich := &stubSkill{name: skill.NameEnrichment, suffix: "+adv"}
			p, err := NewPersonalizer(registryWith(t, hw, example, enrich), nil)
			if err != nil {
				t.Fatal(err)
			}

			res := p.Personalize(context.Background(), "c", tt.prof, nil)
			if !reflect.DeepEqual(res.AdaptationsApplied, tt.wantSkills) {
				t.Errorf("adaptations = %v, want %v", res.AdaptationsApplied, tt.wantSkills)
			}
			if res.Content != tt.wantContent {
				t.Errorf("content = %q, want %q", res.Content, tt.wantContent)
			}
			// When the example step runs it must see the mapped content.
			if example.invoked > 0 && example.lastReq.Content != "c+hw" {
				t.Errorf("example step saw %q, want output of hardware mapping", example.lastReq.Content)
			}
		})
	}
}
