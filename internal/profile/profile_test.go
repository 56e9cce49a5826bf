package profile

import "testing"

func TestSelectStrategyPriority(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want Strategy
	}{
		{
			"beginner wins over hardware",
			Profile{SkillLevel: SkillLevelBeginner, Background: BackgroundHardware},
			StrategyBeginner,
		},
		{
			"hardware focused",
			Profile{SkillLevel: SkillLevelIntermediate, Background: BackgroundHardware},
			StrategyHardwareFocused,
		},
		{
			"both backgrounds count as hardware focused",
			Profile{SkillLevel: SkillLevelIntermediate, Background: BackgroundBoth},
			StrategyHardwareFocused,
		},
		{
			"hardware wins over advanced",
			Profile{SkillLevel: SkillLevelAdvanced, Background: BackgroundHardware},
			StrategyHardwareFocused,
		},
		{
			"advanced",
			Profile{SkillLevel: SkillLevelAdvanced, Background: BackgroundSoftware},
			StrategyAdvanced,
		},
		{
			"zero profile is default",
			Profile{},
			StrategyDefault,
		},
		{
			"intermediate software is default",
			Profile{SkillLevel: SkillLevelIntermediate, Background: BackgroundSoftware},
			StrategyDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.p); got != tt.want {
				t.Errorf("SelectStrategy(%+v) = %q, want %q", tt.p, got, tt.want)
			}
		})
	}
}

// TestSelectStrategyTotal walks the full enum cross-product and checks
// that every profile maps to exactly one known strategy.
func TestSelectStrategyTotal(t *testing.T) {
	levels := []SkillLevel{SkillLevelUnset, SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced}
	backgrounds := []Background{BackgroundUnset, BackgroundSoftware, BackgroundHardware, BackgroundBoth, BackgroundNeither}
	langs := []Language{"", LanguageEnglish, LanguageUrdu}

	known := map[Strategy]bool{
		StrategyBeginner:        true,
		StrategyHardwareFocused: true,
		StrategyAdvanced:        true,
		StrategyDefault:         true,
	}

	for _, lvl := range levels {
		for _, bg := range backgrounds {
			for _, lang := range langs {
				p := Profile{SkillLevel: lvl, Background: bg, LanguagePreference: lang}
				got := SelectStrategy(p)
				if !known[got] {
					t.Errorf("SelectStrategy(%+v) = %q, not a known strategy", p, got)
				}

				// Priority order must explain the result.
				switch {
				case p.IsBeginner() && got != StrategyBeginner:
					t.Errorf("beginner profile %+v got %q", p, got)
				case !p.IsBeginner() && p.IsHardwareFocused() && got != StrategyHardwareFocused:
					t.Errorf("hardware profile %+v got %q", p, got)
				case !p.IsBeginner() && !p.IsHardwareFocused() && p.IsAdvanced() && got != StrategyAdvanced:
					t.Errorf("advanced profile %+v got %q", p, got)
				case !p.IsBeginner() && !p.IsHardwareFocused() && !p.IsAdvanced() && got != StrategyDefault:
					t.Errorf("default profile %+v got %q", p, got)
				}
			}
		}
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Profile
		wantErr bool
	}{
		{"zero profile", Profile{}, false},
		{"full profile", Profile{SkillLevel: SkillLevelBeginner, Background: BackgroundBoth, LanguagePreference: LanguageUrdu}, false},
		{"bad skill level", Profile{SkillLevel: "expert"}, true},
		{"bad background", Profile{Background: "firmware"}, true},
		{"bad language", Profile{LanguagePreference: "de"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
