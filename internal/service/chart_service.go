package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrTrendEmpty indicates there is nothing to draw.
var ErrTrendEmpty = errors.New("trend series is empty")

const (
	chartWidth   = 640
	chartHeight  = 240
	chartPadding = 24
	labelMargin  = 14
)

var (
	chartBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	chartBarColor   = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	chartAxisColor  = color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}
	chartTextColor  = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// TrendChartPNG renders the completed-tasks trend as a PNG bar chart.
// The series is expected in chronological order, as produced by
// ComputeAnalytics.
func TrendChartPNG(trend []TrendPoint) ([]byte, error) {
	if len(trend) == 0 {
		return nil, ErrTrendEmpty
	}

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(chartBackground), image.Point{}, draw.Src)

	maxCompleted := 1
	for _, point := range trend {
		if point.Completed > maxCompleted {
			maxCompleted = point.Completed
		}
	}

	plotLeft := chartPadding
	plotRight := chartWidth - chartPadding
	plotTop := chartPadding
	plotBottom := chartHeight - chartPadding - labelMargin

	// axis
	for x := plotLeft; x <= plotRight; x++ {
		img.Set(x, plotBottom, chartAxisColor)
	}
	for y := plotTop; y <= plotBottom; y++ {
		img.Set(plotLeft, y, chartAxisColor)
	}

	plotWidth := plotRight - plotLeft
	slot := plotWidth / len(trend)
	if slot < 2 {
		slot = 2
	}
	barWidth := slot * 3 / 4
	if barWidth < 1 {
		barWidth = 1
	}

	for i, point := range trend {
		barHeight := (plotBottom - plotTop) * point.Completed / maxCompleted
		x0 := plotLeft + 1 + i*slot + (slot-barWidth)/2
		x1 := x0 + barWidth
		if x1 > plotRight {
			x1 = plotRight
		}
		bar := image.Rect(x0, plotBottom-barHeight, x1, plotBottom)
		draw.Draw(img, bar, image.NewUniform(chartBarColor), image.Point{}, draw.Src)
	}

	drawChartLabel(img, plotLeft, plotTop-6, fmt.Sprintf("max %d", maxCompleted))
	drawChartLabel(img, plotLeft, chartHeight-8, trend[0].Date)
	last := trend[len(trend)-1].Date
	drawChartLabel(img, plotRight-7*len(last), chartHeight-8, last)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

func drawChartLabel(img *image.RGBA, x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(chartTextColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
