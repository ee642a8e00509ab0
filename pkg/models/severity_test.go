package models

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severity order must be low < medium < high < critical")
	}
	if !(PriorityLow < PriorityMedium && PriorityMedium < PriorityHigh && PriorityHigh < PriorityUrgent) {
		t.Error("priority order must be low < medium < high < urgent")
	}
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(SeverityCritical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"critical"` {
		t.Errorf("marshal = %s", raw)
	}

	var s Severity
	if err := json.Unmarshal([]byte(`"high"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != SeverityHigh {
		t.Errorf("unmarshal = %v", s)
	}
}

func TestSeverityUnmarshalUnknown(t *testing.T) {
	var s Severity
	if err := json.Unmarshal([]byte(`"catastrophic"`), &s); err == nil {
		t.Error("expected error for unknown severity")
	}

	var p Priority
	if err := json.Unmarshal([]byte(`"whenever"`), &p); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestPriorityForSeverity(t *testing.T) {
	tests := []struct {
		severity Severity
		want     Priority
	}{
		{SeverityCritical, PriorityUrgent},
		{SeverityHigh, PriorityHigh},
		{SeverityMedium, PriorityMedium},
		{SeverityLow, PriorityLow},
	}

	for _, tt := range tests {
		if got := PriorityForSeverity(tt.severity); got != tt.want {
			t.Errorf("PriorityForSeverity(%s) = %s, want %s", tt.severity, got, tt.want)
		}
	}
}

func TestReportAccessors(t *testing.T) {
	r := &ContradictionReport{
		Clusters: []ContradictionCluster{{
			Theme: "t",
			Contradictions: []Contradiction{
				{Severity: SeverityCritical, Case1: Case{Body: IssuingBody{Code: "TSE"}}, Case2: Case{Body: IssuingBody{Code: "TRE-SP"}}},
				{Severity: SeverityLow, Case1: Case{Body: IssuingBody{Code: "TRE-RJ"}}, Case2: Case{Body: IssuingBody{Code: "TRE-SP"}}},
			},
		}},
	}

	if got := r.CriticalContradictions(); len(got) != 1 {
		t.Errorf("critical = %d, want 1", len(got))
	}
	if got := r.ByBody("TRE-SP"); len(got) != 2 {
		t.Errorf("by TRE-SP = %d, want 2", len(got))
	}
	if got := r.ByBody("TSE"); len(got) != 1 {
		t.Errorf("by TSE = %d, want 1", len(got))
	}
}
