package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// IssueType classifies a diagnosed problem
type IssueType string

const (
	IssueDisease    IssueType = "disease"
	IssuePest       IssueType = "pest"
	IssueDeficiency IssueType = "nutrient deficiency"
)

// legacyIssueTypes maps the issue types written by older releases
var legacyIssueTypes = map[string]IssueType{
	"بیماری":          IssueDisease,
	"آفت":             IssuePest,
	"کمبود مواد مغذی": IssueDeficiency,
}

// NormalizeIssueType maps localized and differently cased issue types
// onto the canonical ones. Unknown types are kept as given.
func NormalizeIssueType(label string) IssueType {
	label = strings.TrimSpace(label)
	if t, ok := legacyIssueTypes[label]; ok {
		return t
	}
	lower := IssueType(strings.ToLower(label))
	switch lower {
	case IssueDisease, IssuePest, IssueDeficiency:
		return lower
	}
	return IssueType(label)
}

// SeverityLevel grades how badly a plant is affected
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "low"
	SeverityMedium   SeverityLevel = "medium"
	SeverityHigh     SeverityLevel = "high"
	SeverityCritical SeverityLevel = "critical"
)

// legacySeverityLevels maps the labels written by older releases
var legacySeverityLevels = map[string]SeverityLevel{
	"کم":     SeverityLow,
	"متوسط":  SeverityMedium,
	"زیاد":   SeverityHigh,
	"بحرانی": SeverityCritical,
}

// NormalizeSeverityLevel maps free-form and localized labels onto the
// canonical levels. Unknown labels are kept as given.
func NormalizeSeverityLevel(label string) SeverityLevel {
	label = strings.TrimSpace(label)
	if level, ok := legacySeverityLevels[label]; ok {
		return level
	}
	lower := SeverityLevel(strings.ToLower(label))
	switch lower {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return lower
	}
	return SeverityLevel(label)
}

// Severity is the structured severity of a diagnosis.
//
// Older data stored severity as a bare string; it still decodes, with
// Percentage left at zero, and is always encoded in the structured form.
type Severity struct {
	Level      SeverityLevel `json:"level"`
	Percentage float64       `json:"percentage"`

	legacy bool
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*s = Severity{Level: NormalizeSeverityLevel(label), legacy: true}
		return nil
	}

	var structured struct {
		Level      SeverityLevel `json:"level"`
		Percentage float64       `json:"percentage"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	level := NormalizeSeverityLevel(string(structured.Level))
	*s = Severity{Level: level, Percentage: structured.Percentage, legacy: level != structured.Level}
	return nil
}

// IsLegacy reports whether s was decoded from the bare string shape or
// carried a label that had to be mapped
func (s Severity) IsLegacy() bool { return s.legacy }

// ChemicalTreatment is one chemical control option.
//
// Older data stored chemicals as plain names; those decode into Name.
type ChemicalTreatment struct {
	Name          string `json:"name"`
	ChemicalGroup string `json:"chemicalGroup"`
	Instructions  string `json:"instructions"`

	legacy bool
}

func (c *ChemicalTreatment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = ChemicalTreatment{Name: name, legacy: true}
		return nil
	}

	var structured struct {
		Name          string `json:"name"`
		ChemicalGroup string `json:"chemicalGroup"`
		Instructions  string `json:"instructions"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return err
	}
	*c = ChemicalTreatment{
		Name:          structured.Name,
		ChemicalGroup: structured.ChemicalGroup,
		Instructions:  structured.Instructions,
	}
	return nil
}

// IsLegacy reports whether c was decoded from a plain string
func (c ChemicalTreatment) IsLegacy() bool { return c.legacy }

// Treatment groups organic and chemical options
type Treatment struct {
	Organic                  []string            `json:"organic"`
	Chemical                 []ChemicalTreatment `json:"chemical"`
	ResistanceManagementNote string              `json:"resistanceManagementNote"`
}

// DiagnosisResult is one problem found on the plant
type DiagnosisResult struct {
	IssueType      IssueType `json:"issueType"`
	IssueName      string    `json:"issueName"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	PossibleCauses []string  `json:"possibleCauses"`
	Treatment      Treatment `json:"treatment"`
	Prevention     []string  `json:"prevention"`

	legacy bool
}

func (d *DiagnosisResult) UnmarshalJSON(data []byte) error {
	type plain DiagnosisResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DiagnosisResult(p)
	d.IssueType = NormalizeIssueType(string(p.IssueType))
	d.legacy = d.IssueType != p.IssueType
	return nil
}

// PlantDiseaseInfo is the structured result of a disease diagnosis
type PlantDiseaseInfo struct {
	Diagnoses            []DiagnosisResult `json:"diagnoses"`
	OverallHealthSummary string            `json:"overallHealthSummary"`
	Error                string            `json:"error,omitempty"`
}

// PrimaryIssueName is the name of the first diagnosed issue, or the
// health summary when nothing specific was found
func (p *PlantDiseaseInfo) PrimaryIssueName() string {
	if p == nil {
		return ""
	}
	if len(p.Diagnoses) > 0 && p.Diagnoses[0].IssueName != "" {
		return p.Diagnoses[0].IssueName
	}
	return p.OverallHealthSummary
}

// HasLegacyShapes reports whether any issue type, severity or chemical
// was decoded from an older shape or label
func (p *PlantDiseaseInfo) HasLegacyShapes() bool {
	if p == nil {
		return false
	}
	for _, d := range p.Diagnoses {
		if d.legacy || d.Severity.IsLegacy() {
			return true
		}
		for _, c := range d.Treatment.Chemical {
			if c.IsLegacy() {
				return true
			}
		}
	}
	return false
}
