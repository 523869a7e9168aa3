package walk

import (
	"testing"

	"github.com/steptracker/steptracker-backend-go/internal/models"
)

func fix(lat, lon float64, accuracy *float64, ts int64) models.GeoSample {
	return models.GeoSample{Latitude: lat, Longitude: lon, AccuracyMeters: accuracy, TimestampMs: ts}
}

func fptr(v float64) *float64 { return &v }

func TestFilterAccept(t *testing.T) {
	f := NewFilter(50)
	prev := fix(48.8566, 2.3522, fptr(10), 1000)

	tests := []struct {
		name   string
		sample models.GeoSample
		prev   *models.GeoSample
		want   bool
	}{
		{"first sample good accuracy", fix(48.8566, 2.3522, fptr(10), 1000), nil, true},
		{"first sample missing accuracy", fix(48.8566, 2.3522, nil, 1000), nil, false},
		{"first sample accuracy worse than threshold", fix(48.8566, 2.3522, fptr(80), 1000), nil, false},
		{"accuracy exactly at threshold", fix(48.8566, 2.3522, fptr(50), 1000), nil, true},
		{"later timestamp", fix(48.8570, 2.3530, fptr(10), 2000), &prev, true},
		{"duplicate timestamp", fix(48.8570, 2.3530, fptr(10), 1000), &prev, false},
		{"out of order timestamp", fix(48.8570, 2.3530, fptr(10), 500), &prev, false},
		{"later but inaccurate", fix(48.8570, 2.3530, fptr(120), 2000), &prev, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Accept(tt.sample, tt.prev); got != tt.want {
				t.Fatalf("Accept() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFilterDefaultThreshold(t *testing.T) {
	f := NewFilter(0)
	if f.AccuracyThresholdM != DefaultAccuracyThresholdM {
		t.Fatalf("expected default threshold %v, got %v", DefaultAccuracyThresholdM, f.AccuracyThresholdM)
	}
}
