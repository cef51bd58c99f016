package types

// Report types accepted by GET /api/generate-report/.
const (
	ReportTypeComprehensive = "comprehensive"
	ReportTypeSummary       = "summary"
	ReportTypeTrends        = "trends"
)

// ReportOrchard identifies the orchard a report covers.
type ReportOrchard struct {
	ID       *int   `json:"id,omitempty"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ReportInfo is the report header.
type ReportInfo struct {
	GeneratedAt string        `json:"generated_at"`
	ReportType  string        `json:"report_type"`
	Orchard     ReportOrchard `json:"orchard"`
}

// RecentActivity counts records created in the last 30 days.
type RecentActivity struct {
	HealthRecordsLast30Days  int `json:"health_records_last_30_days"`
	ImagesAnalyzedLast30Days int `json:"images_analyzed_last_30_days"`
}

// ReportSummary holds the headline counters of a report.
type ReportSummary struct {
	TotalTrees          int            `json:"total_trees"`
	TotalHealthRecords  int            `json:"total_health_records"`
	TotalImagesAnalyzed int            `json:"total_images_analyzed"`
	RecentActivity      RecentActivity `json:"recent_activity"`
}

// DiseaseStats aggregates the detections of one disease.
type DiseaseStats struct {
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// HealthAnalysis is the health breakdown of a report.
type HealthAnalysis struct {
	HealthDistribution map[string]int          `json:"health_distribution"`
	DiseaseAnalysis    map[string]DiseaseStats `json:"disease_analysis"`
	OverallHealthScore float64                 `json:"overall_health_score"`
}

// Recommendation is one prioritized action from a report.
type Recommendation struct {
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
}

// HealthReport is the result of GET /api/generate-report/.
type HealthReport struct {
	ReportInfo      ReportInfo       `json:"report_info"`
	Summary         ReportSummary    `json:"summary"`
	HealthAnalysis  HealthAnalysis   `json:"health_analysis"`
	Recommendations []Recommendation `json:"recommendations"`
}
