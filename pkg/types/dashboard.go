package types

// Stats are the headline numbers of GET /api/dashboard/.
type Stats struct {
	TotalAnalyses  int     `json:"total_analyses"`
	AccuracyRate   float64 `json:"accuracy_rate"`
	ActiveAlerts   int     `json:"active_alerts"`
	ProcessingTime float64 `json:"processing_time"`
}

// RecentAnalysis is one recently classified image.
type RecentAnalysis struct {
	ID         int     `json:"id"`
	Type       string  `json:"type"`
	Filename   string  `json:"filename"`
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// DashboardStats is the result of GET /api/dashboard/.
type DashboardStats struct {
	Stats          Stats            `json:"stats"`
	RecentAnalyses []RecentAnalysis `json:"recent_analyses"`
}
