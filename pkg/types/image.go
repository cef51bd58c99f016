package types

import "encoding/json"

// ScannedImage is a leaf image uploaded for a tree. PredictionResult and
// ConfidenceScore are filled in by the backend once the image is classified.
type ScannedImage struct {
	ID               int      `json:"id,omitempty"`
	Image            string   `json:"image"`
	Tree             int      `json:"tree"`
	UploadedAt       string   `json:"uploaded_at,omitempty"`
	PredictionResult *string  `json:"prediction_result,omitempty"`
	ConfidenceScore  *float64 `json:"confidence_score,omitempty"`
}

// PredictionResult is the disease classification of a single leaf image.
type PredictionResult struct {
	Prediction string   `json:"prediction"`
	Confidence float64  `json:"confidence"`
	ClassNames []string `json:"class_names"`
	ImageURL   string   `json:"image_url"`
}

// BulkUploadResult is the backend's answer to a bulk upload. The shape is
// not fixed beyond the optional counters, so the full object is kept in Raw.
type BulkUploadResult struct {
	Uploaded int            `json:"uploaded,omitempty"`
	Failed   int            `json:"failed,omitempty"`
	Raw      map[string]any `json:"-"`
}

// UnmarshalJSON decodes the counters and keeps the whole object in Raw.
func (r *BulkUploadResult) UnmarshalJSON(data []byte) error {
	type counters BulkUploadResult
	var c counters
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = BulkUploadResult(c)
	r.Raw = raw
	return nil
}

// MarshalJSON writes Raw back out unchanged when it is set.
func (r BulkUploadResult) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return json.Marshal(r.Raw)
	}
	type counters BulkUploadResult
	return json.Marshal(counters(r))
}
