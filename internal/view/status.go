package view

import (
	"strings"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Tone is the semantic color class of a status badge.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
	ToneDefault Tone = "default"
)

// Chart colors.
const (
	ColorGreen  = "#4caf50"
	ColorOrange = "#ff9800"
	ColorRed    = "#f44336"
	ColorGrey   = "#9e9e9e"
)

// DiseaseTone classifies a predicted disease.
func DiseaseTone(disease string) Tone {
	switch disease {
	case types.DiseaseHealthy:
		return ToneSuccess
	case types.DiseaseAppleScab, types.DiseaseBlackRot:
		return ToneError
	case types.DiseaseCedarAppleRust:
		return ToneWarning
	default:
		return ToneDefault
	}
}

// DiseaseName returns the display name of a disease class. Unknown classes
// are returned unchanged.
func DiseaseName(disease string) string {
	switch disease {
	case types.DiseaseHealthy:
		return "Healthy"
	case types.DiseaseAppleScab:
		return "Apple Scab"
	case types.DiseaseBlackRot:
		return "Black Rot"
	case types.DiseaseCedarAppleRust:
		return "Cedar Apple Rust"
	default:
		return disease
	}
}

// PriorityTone classifies a recommendation priority, ignoring case.
func PriorityTone(priority string) Tone {
	switch strings.ToLower(priority) {
	case types.SeverityHigh:
		return ToneError
	case types.SeverityMedium:
		return ToneWarning
	case types.SeverityLow:
		return ToneSuccess
	default:
		return ToneDefault
	}
}

// HealthColor is the chart color of an NDVI health assessment.
func HealthColor(assessment string) string {
	switch assessment {
	case "healthy":
		return ColorGreen
	case "stressed":
		return ColorOrange
	case "unhealthy":
		return ColorRed
	default:
		return ColorGrey
	}
}

// SeverityColor is the chart color of an anomaly severity.
func SeverityColor(severity string) string {
	switch severity {
	case types.SeverityHigh:
		return ColorRed
	case types.SeverityMedium:
		return ColorOrange
	case types.SeverityLow:
		return ColorGreen
	default:
		return ColorGrey
	}
}

// HealthStatusTone classifies a tree health record status.
func HealthStatusTone(status string) Tone {
	switch status {
	case types.HealthHealthy:
		return ToneSuccess
	case types.HealthNeedsAttention:
		return ToneWarning
	case types.HealthDiseaseDetected:
		return ToneError
	default:
		return ToneDefault
	}
}

// ToneColor maps a tone to its chart color.
func ToneColor(t Tone) string {
	switch t {
	case ToneSuccess:
		return ColorGreen
	case ToneWarning:
		return ColorOrange
	case ToneError:
		return ColorRed
	default:
		return ColorGrey
	}
}
