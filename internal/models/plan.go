package models

// PlanType represents a subscription tier
type PlanType string

const (
	PlanTypeStarter PlanType = "starter"
	PlanTypePro     PlanType = "pro"
)

// Usage holds the current resource consumption counts for a user.
// Counts come from the database; the plan evaluator only reads them.
type Usage struct {
	Brains   int `json:"brains"`
	APICalls int `json:"api_calls"`
}

// FeatureSet is the evaluated capability set for a user. MaxBrains and
// MaxAPICalls of nil mean unbounded; the corresponding LimitReached flag is
// always false in that case.
type FeatureSet struct {
	PlanType            PlanType `json:"plan_type"`
	CanCreateBrains     bool     `json:"can_create_brains"`
	CanShareBrains      bool     `json:"can_share_brains"`
	CanUploadDocuments  bool     `json:"can_upload_documents"`
	CanUseImageAnalysis bool     `json:"can_use_image_analysis"`
	CanUseAdvancedAI    bool     `json:"can_use_advanced_ai"`
	MaxBrains           *int     `json:"max_brains"`
	MaxAPICalls         *int     `json:"max_api_calls"`
	BrainLimitReached   bool     `json:"brain_limit_reached"`
	APICallsLimitReached bool    `json:"api_calls_limit_reached"`
}
