package types

// Health statuses reported for a tree.
const (
	HealthHealthy         = "healthy"
	HealthDiseaseDetected = "disease_detected"
	HealthNeedsAttention  = "needs_attention"
)

// Severity levels for health records, anomalies and recommendations.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Disease classes produced by the leaf classifier.
const (
	DiseaseHealthy        = "healthy"
	DiseaseAppleScab      = "apple_scab"
	DiseaseBlackRot       = "black_rot"
	DiseaseCedarAppleRust = "cedar_apple_rust"
)

// TreeHealth is a health record for a tree.
type TreeHealth struct {
	ID            int    `json:"id,omitempty"`
	Tree          int    `json:"tree"`
	HealthStatus  string `json:"health_status"`
	DiseaseType   string `json:"disease_type,omitempty"`
	SeverityLevel string `json:"severity_level"`
	Notes         string `json:"notes,omitempty"`
	LastChecked   string `json:"last_checked,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// IsHealthy reports whether the record carries the healthy status.
func (h TreeHealth) IsHealthy() bool {
	return h.HealthStatus == HealthHealthy
}
