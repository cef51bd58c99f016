package view

import (
	"context"

	"github.com/mesh-intelligence/orchard/pkg/client"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// MsgPredictionFailed is shown when classification fails without a backend
// message.
const MsgPredictionFailed = "Prediction failed. Please try again."

// Predictor classifies leaf images.
type Predictor interface {
	Predict(ctx context.Context, image client.File) (*types.PredictionResult, error)
}

// Prediction is the disease-classification screen.
type Prediction struct {
	Screen[*types.PredictionResult]
	api Predictor
}

// NewPrediction returns a prediction screen backed by api.
func NewPrediction(api Predictor) *Prediction {
	return &Prediction{api: api}
}

// Submit classifies image. The backend result is stored as returned.
func (p *Prediction) Submit(ctx context.Context, image client.File) error {
	if image.Empty() {
		return client.NoImageError()
	}
	return p.Load(ctx, func(ctx context.Context) (*types.PredictionResult, error) {
		return p.api.Predict(ctx, image)
	})
}
