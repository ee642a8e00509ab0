package caselaw

import (
	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// OppositeSet holds the registered pairs of mutually exclusive decision
// labels. The default set recognizes the three binary outcome vocabularies;
// additional pairs can be registered for other dockets.
type OppositeSet struct {
	pairs [][2]models.DecisionLabel
}

// DefaultOpposites returns the built-in opposite-pair table.
func DefaultOpposites() *OppositeSet {
	return &OppositeSet{pairs: [][2]models.DecisionLabel{
		{models.DecisionProvided, models.DecisionNotProvided},
		{models.DecisionGranted, models.DecisionDenied},
		{models.DecisionUpheld, models.DecisionOverturned},
	}}
}

// Register adds an opposite pair to the set.
func (o *OppositeSet) Register(a, b models.DecisionLabel) {
	o.pairs = append(o.pairs, [2]models.DecisionLabel{a, b})
}

// AreOpposite reports whether two labels form a registered opposite pair.
// Order does not matter. Unknown or neutral labels never oppose anything.
func (o *OppositeSet) AreOpposite(a, b models.DecisionLabel) bool {
	if a == "" || b == "" || a == models.DecisionUnknown || b == models.DecisionUnknown {
		return false
	}
	for _, pair := range o.pairs {
		if (a == pair[0] && b == pair[1]) || (a == pair[1] && b == pair[0]) {
			return true
		}
	}
	return false
}

// Favorable reports whether a label counts as a favorable outcome for trend
// ratios.
func Favorable(label models.DecisionLabel) bool {
	switch label {
	case models.DecisionProvided, models.DecisionGranted, models.DecisionUpheld:
		return true
	default:
		return false
	}
}
