package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/propguard/risk"
)

// Presets are the built-in prop firm evaluation rule sets.
var Presets = map[string]risk.RuleSet{
	"ftmo": {AccountSize: 100000, Leverage: 100, DailyLoss: 5000, TotalDrawdown: 10000, ProfitTarget: 10000},
	"tft":  {AccountSize: 100000, Leverage: 100, DailyLoss: 5000, TotalDrawdown: 10000, ProfitTarget: 10000},
	"mff":  {AccountSize: 100000, Leverage: 100, DailyLoss: 5000, TotalDrawdown: 10000, ProfitTarget: 10000},
}

// PresetNames lists the preset keys in order.
func PresetNames() []string {
	out := make([]string, 0, len(Presets))
	for k := range Presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadRules reads a YAML (or JSON) rule set file.
func LoadRules(path string) (risk.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return risk.RuleSet{}, fmt.Errorf("%w: read rules file: %v", ErrInvalidConfiguration, err)
	}
	var rs risk.RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return risk.RuleSet{}, fmt.Errorf("%w: parse rules file %s: %v", ErrInvalidConfiguration, path, err)
	}
	if err := rs.Validate(); err != nil {
		return risk.RuleSet{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, path, err)
	}
	return rs, nil
}

// RuleSet resolves the configured rule set. Nil means percentage limits only.
func (c *Config) RuleSet() (*risk.RuleSet, error) {
	if c.Risk.RulesFile != "" {
		rs, err := LoadRules(c.Risk.RulesFile)
		if err != nil {
			return nil, err
		}
		return &rs, nil
	}
	name := strings.ToLower(strings.TrimSpace(c.Risk.Rules))
	if name == "" || name == "none" {
		return nil, nil
	}
	rs, ok := Presets[name]
	if !ok {
		return nil, invalid("risk.rules %q unknown (supported: %s)", c.Risk.Rules, strings.Join(PresetNames(), ", "))
	}
	return &rs, nil
}
