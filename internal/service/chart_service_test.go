package service

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestTrendChartPNGDimensions(t *testing.T) {
	trend := []TrendPoint{
		{Date: "2026-08-26", Completed: 2},
		{Date: "2026-08-27", Completed: 5},
		{Date: "2026-08-28", Completed: 0},
	}

	data, err := TrendChartPNG(trend)
	if err != nil {
		t.Fatalf("TrendChartPNG returned error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 240 {
		t.Fatalf("unexpected chart size: %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestTrendChartPNGEmptySeries(t *testing.T) {
	if _, err := TrendChartPNG(nil); !errors.Is(err, ErrTrendEmpty) {
		t.Fatalf("expected ErrTrendEmpty, got %v", err)
	}
}

func TestTrendChartPNGSinglePoint(t *testing.T) {
	data, err := TrendChartPNG([]TrendPoint{{Date: "2026-08-28", Completed: 1}})
	if err != nil {
		t.Fatalf("TrendChartPNG returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty PNG output")
	}
}
