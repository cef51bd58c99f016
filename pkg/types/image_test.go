package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUploadResult_KeepsUnknownFields(t *testing.T) {
	data := []byte(`{"uploaded":3,"failed":1,"errors":["bad.png: unsupported format"],"tree":7}`)

	var r BulkUploadResult
	require.NoError(t, json.Unmarshal(data, &r))

	assert.Equal(t, 3, r.Uploaded)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, float64(7), r.Raw["tree"])
	assert.Len(t, r.Raw["errors"], 1)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(out))
}

func TestBulkUploadResult_MarshalWithoutRaw(t *testing.T) {
	out, err := json.Marshal(BulkUploadResult{Uploaded: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uploaded":2}`, string(out))
}

func TestTreeHealth_IsHealthy(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{HealthHealthy, true},
		{HealthDiseaseDetected, false},
		{HealthNeedsAttention, false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, TreeHealth{HealthStatus: tt.status}.IsHealthy())
		})
	}
}

func TestScannedImage_OptionalPrediction(t *testing.T) {
	var img ScannedImage
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"image":"/media/a.jpg","tree":4,"uploaded_at":"2024-05-01T10:00:00Z"}`), &img))
	assert.Nil(t, img.PredictionResult)
	assert.Nil(t, img.ConfidenceScore)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"image":"/media/a.jpg","tree":4,"prediction_result":"black_rot","confidence_score":0.91}`), &img))
	require.NotNil(t, img.PredictionResult)
	assert.Equal(t, DiseaseBlackRot, *img.PredictionResult)
	assert.InDelta(t, 0.91, *img.ConfidenceScore, 1e-9)
}
