package dashboard

import (
	"errors"
	"io"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

var (
	ErrUnknownFigure = errors.New("unknown figure")
	ErrNotRenderable = errors.New("figure cannot be rendered as png")
	ErrNoData        = errors.New("no data to plot")
)

const (
	barWidth   = 40
	barSpacing = 12
)

// RenderPNG draws one line or bar figure for location as a PNG. Only the
// series that figure needs is computed. Heatmaps and the density map only
// exist as Plotly figures.
func (s *Service) RenderPNG(w io.Writer, id, location string) error {
	title := figureTitle(id, location, s.mapCfg.CityName)

	switch id {
	case FigureTemporal:
		return renderYearLine(w, title, CountByYear(s.table.Filter(location)))
	case FigureCrimeTypes:
		return renderBars(w, title, CountByDescription(s.table.Filter(location)))
	case FigureTopCrimes:
		return renderBars(w, title, TopN(CountByDescription(s.table.Filter(location)), topCrimes))
	case FigureWeekHour, FigureWeekMonth, FigureMonthYear, FigureDensity:
		return ErrNotRenderable
	default:
		return ErrUnknownFigure
	}
}

func renderYearLine(w io.Writer, title string, years []YearCount) error {
	if len(years) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(years))
	ys := make([]float64, len(years))
	ticks := make([]chart.Tick, len(years))
	maxY := 0.0
	for i, yc := range years {
		xs[i] = float64(yc.Year)
		ys[i] = float64(yc.Count)
		ticks[i] = chart.Tick{Value: xs[i], Label: strconv.Itoa(yc.Year)}
		maxY = max(maxY, ys[i])
	}

	// Pad both ranges so a single year or a flat series never gives go-chart
	// a zero-width range.
	graph := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: &chart.ContinuousRange{Min: xs[0] - 0.5, Max: xs[len(xs)-1] + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  incidentsLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxY + 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

func renderBars(w io.Writer, title string, counts []Count) error {
	if len(counts) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(counts))
	maxV := 0.0
	for i, c := range counts {
		bars[i] = chart.Value{Label: c.Label, Value: float64(c.Value)}
		maxV = max(maxV, float64(c.Value))
	}

	graph := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 50}},
		Width:      max(1024, len(bars)*(barWidth+barSpacing)+200),
		Height:     512,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxV + 1},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
