package types

// NDVIStatistics summarizes the per-pixel NDVI values of an image.
type NDVIStatistics struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// NDVIAnalysis is the result of POST /api/ndvi-analysis/.
type NDVIAnalysis struct {
	NDVIStatistics   NDVIStatistics `json:"ndvi_statistics"`
	HealthAssessment string         `json:"health_assessment"`
	Message          string         `json:"message"`
}

// Anomaly is one unusual pattern found in the health records.
type Anomaly struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// AnomalyAnalysis holds the counters and anomalies for a period.
type AnomalyAnalysis struct {
	TotalRecords      int       `json:"total_records"`
	HealthyCount      int       `json:"healthy_count"`
	DiseasedCount     int       `json:"diseased_count"`
	DiseaseRate       float64   `json:"disease_rate"`
	AnomaliesDetected int       `json:"anomalies_detected"`
	Anomalies         []Anomaly `json:"anomalies"`
}

// AnomalyDetection is the result of GET /api/anomaly-detection/.
type AnomalyDetection struct {
	AnomalyAnalysis AnomalyAnalysis `json:"anomaly_analysis"`
	Period          string          `json:"period"`
	OrchardID       string          `json:"orchard_id,omitempty"`
}

// MonthlyTrend is one month of aggregated health records.
type MonthlyTrend struct {
	Month          string  `json:"month"`
	TotalRecords   int     `json:"total_records"`
	Healthy        int     `json:"healthy"`
	AppleScab      int     `json:"apple_scab"`
	BlackRot       int     `json:"black_rot"`
	CedarAppleRust int     `json:"cedar_apple_rust"`
	Stressed       int     `json:"stressed"`
	DiseaseRate    float64 `json:"disease_rate"`
}

// TrendAnalysis describes the direction of orchard health over time.
type TrendAnalysis struct {
	Period         string         `json:"period"`
	TotalRecords   int            `json:"total_records"`
	TrendDirection string         `json:"trend_direction"`
	TrendMagnitude float64        `json:"trend_magnitude"`
	MonthlyTrends  []MonthlyTrend `json:"monthly_trends"`
}

// HealthTrends is the result of GET /api/health-trends/.
type HealthTrends struct {
	TrendAnalysis TrendAnalysis `json:"trend_analysis"`
	OrchardID     string        `json:"orchard_id,omitempty"`
}
