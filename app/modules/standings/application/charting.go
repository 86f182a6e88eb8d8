package standingsservice

import (
	"bytes"
	"context"
	"fmt"

	standingsdomain "github.com/Black-And-White-Club/tripscore/app/modules/standings/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colours used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Accent     drawing.Color
	Text       drawing.Color
}

// DefaultPalette is links green with a gold leader.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("f7f5ef"),
	Bar:        drawing.ColorFromHex("1b4332"),
	Accent:     drawing.ColorFromHex("c9a227"),
	Text:       drawing.ColorFromHex("1f2933"),
}

// PrizeChartPNG renders the prize summary as a bar chart.
func (s *StandingsService) PrizeChartPNG(ctx context.Context) ([]byte, error) {
	_, span := s.telemetry.Tracer.Start(ctx, "PrizeChartPNG")
	defer span.End()
	return GeneratePrizeChart(s.Results(), s.palette)
}

// GeneratePrizeChart draws one bar per player with winnings, highest first.
// Without winnings it draws a placeholder.
func GeneratePrizeChart(res standingsdomain.Results, palette ChartPalette) ([]byte, error) {
	if len(res.Summary) == 0 {
		return renderNoDataPlaceholder(palette, "No prizes awarded yet")
	}

	bars := make([]chart.Value, len(res.Summary))
	for i, t := range res.Summary {
		color := palette.Bar
		if i == 0 {
			color = palette.Accent
		}
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", t.Name, t.Wins),
			Value: float64(t.Amount),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	graph := chart.BarChart{
		Title:  fmt.Sprintf("Prize money (%s)", res.Currency),
		Width:  800,
		Height: 420,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		BarWidth:     60,
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render prize chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
