package plans

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bra3n/bra3n/internal/models"
)

// Template is the per-plan capability template as configured. A nil
// MaxBrains/MaxAPICalls means unbounded.
type Template struct {
	CanCreateBrains     bool `yaml:"can_create_brains" json:"can_create_brains"`
	CanShareBrains      bool `yaml:"can_share_brains" json:"can_share_brains"`
	CanUploadDocuments  bool `yaml:"can_upload_documents" json:"can_upload_documents"`
	CanUseImageAnalysis bool `yaml:"can_use_image_analysis" json:"can_use_image_analysis"`
	CanUseAdvancedAI    bool `yaml:"can_use_advanced_ai" json:"can_use_advanced_ai"`
	MaxBrains           *int `yaml:"max_brains" json:"max_brains"`
	MaxAPICalls         *int `yaml:"max_api_calls" json:"max_api_calls"`
}

// Table maps plan types to capability templates. Tables are immutable after
// construction; Evaluate never mutates them.
type Table struct {
	DefaultPlan models.PlanType                  `yaml:"default_plan"`
	Plans       map[models.PlanType]Template `yaml:"plans"`
}

// DefaultTable returns the built-in plan table used when no plan file is
// configured: a capped starter tier and an unbounded pro tier.
func DefaultTable() *Table {
	starterBrains := 3
	starterCalls := 50
	return &Table{
		DefaultPlan: models.PlanTypeStarter,
		Plans: map[models.PlanType]Template{
			models.PlanTypeStarter: {
				CanCreateBrains:    true,
				CanUploadDocuments: true,
				MaxBrains:          &starterBrains,
				MaxAPICalls:        &starterCalls,
			},
			models.PlanTypePro: {
				CanCreateBrains:     true,
				CanShareBrains:      true,
				CanUploadDocuments:  true,
				CanUseImageAnalysis: true,
				CanUseAdvancedAI:    true,
			},
		},
	}
}

// Load reads a plan table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return Parse(data)
}

// Parse parses a plan table from YAML bytes.
func Parse(data []byte) (*Table, error) {
	t := &Table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if len(t.Plans) == 0 {
		return nil, fmt.Errorf("plan file defines no plans")
	}
	if t.DefaultPlan == "" {
		t.DefaultPlan = models.PlanTypeStarter
	}
	if _, ok := t.Plans[t.DefaultPlan]; !ok {
		return nil, fmt.Errorf("default plan %q not defined in plan file", t.DefaultPlan)
	}
	return t, nil
}

// Evaluate maps a plan type plus current usage to a FeatureSet. It is pure and
// total: an unknown plan type falls back to the table's default plan, and an
// unbounded max forces the corresponding LimitReached flag to false regardless
// of usage.
func (t *Table) Evaluate(plan models.PlanType, usage models.Usage) models.FeatureSet {
	tpl, ok := t.Plans[plan]
	if !ok {
		plan = t.DefaultPlan
		tpl = t.Plans[plan]
	}

	fs := models.FeatureSet{
		PlanType:            plan,
		CanCreateBrains:     tpl.CanCreateBrains,
		CanShareBrains:      tpl.CanShareBrains,
		CanUploadDocuments:  tpl.CanUploadDocuments,
		CanUseImageAnalysis: tpl.CanUseImageAnalysis,
		CanUseAdvancedAI:    tpl.CanUseAdvancedAI,
	}

	// Copy limits so callers cannot mutate the shared table through the result.
	if tpl.MaxBrains != nil {
		max := *tpl.MaxBrains
		fs.MaxBrains = &max
		fs.BrainLimitReached = usage.Brains >= max
	}
	if tpl.MaxAPICalls != nil {
		max := *tpl.MaxAPICalls
		fs.MaxAPICalls = &max
		fs.APICallsLimitReached = usage.APICalls >= max
	}

	return fs
}
