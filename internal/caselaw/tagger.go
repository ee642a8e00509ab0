package caselaw

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// PatternGroup associates a decision label with the regular expressions that
// signal it. Unless patterns veto a group: a negated form such as
// "not provided" must not fire the bare "provided" group.
type PatternGroup struct {
	Label    models.DecisionLabel
	patterns []*regexp.Regexp
	unless   []*regexp.Regexp
}

// Tagger assigns coarse decision labels to case texts by ordered pattern
// matching. Favorable groups come before unfavorable ones; the first group
// that matches wins.
type Tagger struct {
	groups []PatternGroup
}

// NewTagger returns a tagger with the built-in pattern table.
func NewTagger() *Tagger {
	t, err := newTaggerFromTable(defaultPatternTable())
	if err != nil {
		// The built-in table is compiled in tests; a failure here is a
		// programming error.
		panic(err)
	}
	return t
}

// NewTaggerFromFile builds a tagger from a YAML pattern table, allowing
// deployments to extend the outcome vocabulary without a code change.
func NewTaggerFromFile(path string) (*Tagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern table: %w", err)
	}
	var table PatternTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if len(table.Groups) == 0 {
		return nil, fmt.Errorf("pattern table %s has no groups", path)
	}
	return newTaggerFromTable(table)
}

// PatternTable is the serializable form of the tagger configuration.
type PatternTable struct {
	Groups []PatternGroupConfig `yaml:"groups"`
}

// PatternGroupConfig is one entry of a PatternTable.
type PatternGroupConfig struct {
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
	Unless   []string `yaml:"unless,omitempty"`
}

func newTaggerFromTable(table PatternTable) (*Tagger, error) {
	groups := make([]PatternGroup, 0, len(table.Groups))
	for _, cfg := range table.Groups {
		group := PatternGroup{Label: models.DecisionLabel(cfg.Label)}
		for _, p := range cfg.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q for %s: %w", p, cfg.Label, err)
			}
			group.patterns = append(group.patterns, re)
		}
		for _, p := range cfg.Unless {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("compile unless pattern %q for %s: %w", p, cfg.Label, err)
			}
			group.unless = append(group.unless, re)
		}
		groups = append(groups, group)
	}
	return &Tagger{groups: groups}, nil
}

// TagDecision returns the decision label for a case text, or DecisionUnknown
// when no pattern matches. It is pure and never fails: an unmatched text is
// an expected outcome, not an error.
func (t *Tagger) TagDecision(text string) models.DecisionLabel {
	for _, group := range t.groups {
		if group.matches(text) {
			return group.Label
		}
	}
	return models.DecisionUnknown
}

func (g *PatternGroup) matches(text string) bool {
	for _, re := range g.unless {
		if re.MatchString(text) {
			return false
		}
	}
	for _, re := range g.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// defaultPatternTable covers the three registered outcome vocabularies plus
// neutral dispositions. Group order matters: favorable outcomes are checked
// before unfavorable ones, and every pattern tolerates hyphen or space
// variants of compound forms.
func defaultPatternTable() PatternTable {
	return PatternTable{Groups: []PatternGroupConfig{
		{
			Label:    string(models.DecisionProvided),
			Patterns: []string{`\bprovided\b`, `\bappeal\s+allowed\b`},
			Unless:   []string{`\bnot[\s-]provided\b`, `\bun[\s-]?provided\b`},
		},
		{
			Label:    string(models.DecisionGranted),
			Patterns: []string{`\bgranted\b`, `\bgrants?\s+the\s+(?:motion|petition|request|injunction)\b`},
			Unless:   []string{`\bnot[\s-]granted\b`},
		},
		{
			Label:    string(models.DecisionUpheld),
			Patterns: []string{`\bupheld\b`, `\baffirmed\b`, `\bsustained\b`},
			Unless:   []string{`\bnot[\s-]upheld\b`},
		},
		{
			Label:    string(models.DecisionNotProvided),
			Patterns: []string{`\bnot[\s-]provided\b`, `\bappeal\s+disallowed\b`},
		},
		{
			Label:    string(models.DecisionDenied),
			Patterns: []string{`\bdenied\b`, `\brejected\b`, `\bdenies\s+the\s+(?:motion|petition|request)\b`},
		},
		{
			Label:    string(models.DecisionOverturned),
			Patterns: []string{`\boverturned\b`, `\breversed\b`, `\bvacated\b`},
		},
		{
			Label:    string(models.DecisionNeutral),
			Patterns: []string{`\bremanded\b`, `\bno\s+ruling\s+on\s+the\s+merits\b`, `\bmoot\b`},
		},
	}}
}
