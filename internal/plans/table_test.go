package plans

import (
	"testing"

	"github.com/bra3n/bra3n/internal/models"
)

func intPtr(n int) *int {
	return &n
}

func TestEvaluate_KnownPlans(t *testing.T) {
	t.Parallel()

	table := DefaultTable()

	tests := []struct {
		name     string
		plan     models.PlanType
		usage    models.Usage
		validate func(*testing.T, models.FeatureSet)
	}{
		{
			name:  "starter under limits",
			plan:  models.PlanTypeStarter,
			usage: models.Usage{Brains: 1, APICalls: 10},
			validate: func(t *testing.T, fs models.FeatureSet) {
				if !fs.CanCreateBrains {
					t.Error("Expected starter to allow creating brains")
				}
				if fs.CanShareBrains || fs.CanUseAdvancedAI {
					t.Error("Expected starter to deny sharing and advanced AI")
				}
				if fs.BrainLimitReached || fs.APICallsLimitReached {
					t.Error("Expected no limit reached under usage")
				}
			},
		},
		{
			name:  "starter at brain limit",
			plan:  models.PlanTypeStarter,
			usage: models.Usage{Brains: 3},
			validate: func(t *testing.T, fs models.FeatureSet) {
				if !fs.BrainLimitReached {
					t.Error("Expected brain limit reached at usage == max")
				}
			},
		},
		{
			name:  "pro is unbounded regardless of usage",
			plan:  models.PlanTypePro,
			usage: models.Usage{Brains: 100000, APICalls: 100000},
			validate: func(t *testing.T, fs models.FeatureSet) {
				if fs.MaxBrains != nil || fs.MaxAPICalls != nil {
					t.Error("Expected pro limits to be unbounded (nil)")
				}
				if fs.BrainLimitReached || fs.APICallsLimitReached {
					t.Error("Expected LimitReached to be false when max is unbounded")
				}
				if !fs.CanShareBrains || !fs.CanUseAdvancedAI || !fs.CanUseImageAnalysis {
					t.Error("Expected pro to enable all capabilities")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.validate(t, table.Evaluate(tt.plan, tt.usage))
		})
	}
}

func TestEvaluate_UnknownPlanFallsBackToDefault(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	usage := models.Usage{Brains: 2, APICalls: 49}

	got := table.Evaluate(models.PlanType("unknown-plan"), usage)
	want := table.Evaluate(models.PlanTypeStarter, usage)

	if got.PlanType != want.PlanType {
		t.Errorf("Expected fallback plan %q, got %q", want.PlanType, got.PlanType)
	}
	if got.CanShareBrains != want.CanShareBrains ||
		got.BrainLimitReached != want.BrainLimitReached ||
		got.APICallsLimitReached != want.APICallsLimitReached {
		t.Errorf("Expected unknown plan to evaluate identically to starter: got %+v want %+v", got, want)
	}
}

func TestEvaluate_UnboundedMaxNeverReachesLimit(t *testing.T) {
	t.Parallel()

	table := &Table{
		DefaultPlan: models.PlanTypeStarter,
		Plans: map[models.PlanType]Template{
			models.PlanTypeStarter: {
				CanCreateBrains: true,
				MaxBrains:       nil, // unbounded
				MaxAPICalls:     intPtr(10),
			},
		},
	}

	for _, brains := range []int{0, 1, 1000, 1 << 30} {
		fs := table.Evaluate(models.PlanTypeStarter, models.Usage{Brains: brains})
		if fs.BrainLimitReached {
			t.Errorf("Expected BrainLimitReached=false with unbounded max at usage %d", brains)
		}
	}

	fs := table.Evaluate(models.PlanTypeStarter, models.Usage{APICalls: 10})
	if !fs.APICallsLimitReached {
		t.Error("Expected APICallsLimitReached=true at usage == max")
	}
}

func TestEvaluate_ResultDoesNotAliasTable(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	fs := table.Evaluate(models.PlanTypeStarter, models.Usage{})
	if fs.MaxBrains == nil {
		t.Fatal("Expected starter MaxBrains to be bounded")
	}
	*fs.MaxBrains = 9999

	again := table.Evaluate(models.PlanTypeStarter, models.Usage{})
	if *again.MaxBrains == 9999 {
		t.Error("Mutating the evaluated FeatureSet must not change the table")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*testing.T, *Table)
	}{
		{
			name: "valid table with null limits",
			yaml: `
default_plan: starter
plans:
  starter:
    can_create_brains: true
    max_brains: 3
    max_api_calls: 50
  pro:
    can_create_brains: true
    can_share_brains: true
    max_brains: null
    max_api_calls: null
`,
			check: func(t *testing.T, table *Table) {
				pro := table.Plans[models.PlanTypePro]
				if pro.MaxBrains != nil {
					t.Error("Expected null max_brains to parse as nil (unbounded)")
				}
				starter := table.Plans[models.PlanTypeStarter]
				if starter.MaxBrains == nil || *starter.MaxBrains != 3 {
					t.Error("Expected starter max_brains=3")
				}
			},
		},
		{
			name:    "empty plans rejected",
			yaml:    "default_plan: starter\nplans: {}\n",
			wantErr: true,
		},
		{
			name:    "default plan must exist",
			yaml:    "default_plan: enterprise\nplans:\n  starter:\n    can_create_brains: true\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			yaml:    "plans: [not a map",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected parse error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected parse error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, table)
			}
		})
	}
}
