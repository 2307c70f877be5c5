// Package chart renders ledger audit results as PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Veraticus/ledger-audit/internal/correction"
	"github.com/Veraticus/ledger-audit/internal/report"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNotEnoughData is returned when a series cannot span a range.
var ErrNotEnoughData = errors.New("not enough data to chart")

var (
	balanceColor  = drawing.Color{R: 77, G: 184, B: 255, A: 255}
	positiveColor = drawing.Color{R: 78, G: 205, B: 196, A: 255}
	negativeColor = drawing.Color{R: 255, G: 107, B: 107, A: 255}
)

func brl(v interface{}) string {
	if f, ok := v.(float64); ok {
		return message.NewPrinter(language.BrazilianPortuguese).Sprintf("R$ %.0f", f)
	}
	return ""
}

// Balance writes the capital balance of a correction run over time. In
// amortizing mode it follows the memorial; in independent mode it shows the
// running sum of contributions and the corrected total at the base date.
func Balance(w io.Writer, result correction.Result) error {
	series := capitalSeries(result)
	if len(series.XValues) < 2 || !series.XValues[0].Before(series.XValues[len(series.XValues)-1]) {
		return fmt.Errorf("%w: capital balance needs events before the base date", ErrNotEnoughData)
	}

	maxBalance := 0.0
	for _, v := range series.YValues {
		maxBalance = math.Max(maxBalance, v)
	}
	if maxBalance == 0 {
		maxBalance = 1
	}

	graph := gochart.Chart{
		Title: fmt.Sprintf("Corrected capital (%s, %.4f%% a.m.)", result.Mode, result.MonthlyRate),
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1000,
		Height: 500,
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			ValueFormatter: brl,
			Range:          &gochart.ContinuousRange{Min: 0, Max: maxBalance * 1.1},
		},
		Series: []gochart.Series{series},
	}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render balance chart: %w", err)
	}
	return nil
}

func capitalSeries(result correction.Result) gochart.TimeSeries {
	series := gochart.TimeSeries{
		Name: "Capital",
		Style: gochart.Style{
			StrokeColor: balanceColor,
			StrokeWidth: 2,
		},
	}

	if result.Mode == correction.ModeAmortizing {
		for _, m := range result.Memorial {
			series.XValues = append(series.XValues, m.EventDate)
			series.YValues = append(series.YValues, m.BalanceAfter)
		}
		return series
	}

	running := 0.0
	for _, d := range result.Details {
		running += d.Event.OriginalAmount
		series.XValues = append(series.XValues, d.Event.Date)
		series.YValues = append(series.YValues, running)
	}
	if len(series.XValues) > 0 {
		series.XValues = append(series.XValues, result.BaseDate)
		series.YValues = append(series.YValues, result.TotalCorrected)
	}
	return series
}

// MonthlyNet writes one bar per month with the month's net flow.
func MonthlyNet(w io.Writer, months []report.Month) error {
	if len(months) == 0 {
		return fmt.Errorf("%w: no months", ErrNotEnoughData)
	}

	bars := make([]gochart.Value, 0, len(months))
	low, high := 0.0, 0.0
	for _, m := range months {
		color := positiveColor
		if m.Net < 0 {
			color = negativeColor
		}
		bars = append(bars, gochart.Value{
			Label: m.Start.Format("01/06"),
			Value: m.Net,
			Style: gochart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 0,
			},
		})
		low = math.Min(low, m.Net)
		high = math.Max(high, m.Net)
	}
	if low == high {
		high = 1
	}

	barChart := gochart.BarChart{
		Title: "Monthly net flow",
		Background: gochart.Style{
			Padding: gochart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:        max(800, 60*len(bars)),
		Height:       400,
		BarWidth:     40,
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
		YAxis: gochart.YAxis{
			ValueFormatter: brl,
			Range:          &gochart.ContinuousRange{Min: low * 1.1, Max: high * 1.1},
		},
	}

	if err := barChart.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render monthly chart: %w", err)
	}
	return nil
}
