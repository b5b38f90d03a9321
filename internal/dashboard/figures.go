package dashboard

import (
	"fmt"

	"github.com/mr1hm/crime-dashboard/internal/config"
)

// Figure ids, in the order the page lays the charts out.
const (
	FigureTemporal   = "temporal-patterns"
	FigureCrimeTypes = "crime-type-distribution"
	FigureWeekHour   = "heatmap-week-hour"
	FigureWeekMonth  = "heatmap-week-month"
	FigureMonthYear  = "heatmap-month-year"
	FigureTopCrimes  = "top-5-crimes-location"
	FigureDensity    = "density-map"
)

var FigureIDs = []string{
	FigureTemporal,
	FigureCrimeTypes,
	FigureWeekHour,
	FigureWeekMonth,
	FigureMonthYear,
	FigureTopCrimes,
	FigureDensity,
}

const (
	incidentsLabel = "Number of Incidents"
	densityRadius  = 10
)

// Figure is a Plotly figure: traces plus layout, tagged with the id of the
// page element it renders into.
type Figure struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace fields are typed as any so an empty series still encodes as [] while
// fields a trace type does not use are left out.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode,omitempty"`
	X             any       `json:"x,omitempty"`
	Y             any       `json:"y,omitempty"`
	Z             any       `json:"z,omitempty"`
	Lat           any       `json:"lat,omitempty"`
	Lon           any       `json:"lon,omitempty"`
	Radius        int       `json:"radius,omitempty"`
	ColorBar      *ColorBar `json:"colorbar,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
}

type ColorBar struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

type Layout struct {
	Title Title      `json:"title"`
	XAxis *Axis      `json:"xaxis,omitempty"`
	YAxis *Axis      `json:"yaxis,omitempty"`
	Map   *MapLayout `json:"map,omitempty"`
}

type Axis struct {
	Title Title  `json:"title"`
	Type  string `json:"type,omitempty"`
	DTick int    `json:"dtick,omitempty"`
}

type MapLayout struct {
	Style  string    `json:"style"`
	Center MapCenter `json:"center"`
	Zoom   float64   `json:"zoom"`
}

type MapCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func figureTitle(id, location, city string) string {
	switch id {
	case FigureTemporal:
		return "Temporal Patterns for " + location
	case FigureCrimeTypes:
		return "Crime Type Distribution for " + location
	case FigureWeekHour:
		return "Week vs Hour Heatmap for " + location
	case FigureWeekMonth:
		return "Week vs Month Heatmap for " + location
	case FigureMonthYear:
		return "Month vs Year Heatmap for " + location
	case FigureTopCrimes:
		return "Top 5 Crimes in " + location
	case FigureDensity:
		return "Density Map of Crime Incidents in " + city
	}
	return id
}

// Figures converts a result into the seven Plotly figures, in FigureIDs order.
func (r *Result) Figures(mapCfg config.MapConfig) []Figure {
	title := func(id string) Title {
		return Title{Text: figureTitle(id, r.Location, mapCfg.CityName)}
	}

	return []Figure{
		lineFigure(FigureTemporal, title(FigureTemporal), r.Years),
		barFigure(FigureCrimeTypes, title(FigureCrimeTypes), r.Distribution),
		heatmapFigure(FigureWeekHour, title(FigureWeekHour), r.HourWeekday, "Hour of Day", "Day of Week"),
		heatmapFigure(FigureWeekMonth, title(FigureWeekMonth), r.MonthWeekday, "Month", "Day of Week"),
		heatmapFigure(FigureMonthYear, title(FigureMonthYear), r.YearMonth, "Year", "Month"),
		barFigure(FigureTopCrimes, title(FigureTopCrimes), r.Top),
		densityFigure(title(FigureDensity), r.Density, mapCfg),
	}
}

func lineFigure(id string, title Title, years []YearCount) Figure {
	xs := make([]int, len(years))
	ys := make([]int, len(years))
	for i, yc := range years {
		xs[i] = yc.Year
		ys[i] = yc.Count
	}

	return Figure{
		ID: id,
		Data: []Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			X:    xs,
			Y:    ys,
		}},
		Layout: Layout{
			Title: title,
			XAxis: &Axis{Title: Title{Text: "Year"}, DTick: 1},
			YAxis: &Axis{Title: Title{Text: incidentsLabel}},
		},
	}
}

func barFigure(id string, title Title, counts []Count) Figure {
	labels := make([]string, len(counts))
	values := make([]int, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = c.Value
	}

	return Figure{
		ID: id,
		Data: []Trace{{
			Type: "bar",
			X:    labels,
			Y:    values,
		}},
		Layout: Layout{
			Title: title,
			XAxis: &Axis{Title: Title{Text: "Crime Type"}, Type: "category"},
			YAxis: &Axis{Title: Title{Text: incidentsLabel}},
		},
	}
}

func heatmapFigure(id string, title Title, m Matrix, xLabel, yLabel string) Figure {
	return Figure{
		ID: id,
		Data: []Trace{{
			Type:          "heatmap",
			X:             m.X,
			Y:             m.Y,
			Z:             m.Z,
			ColorBar:      &ColorBar{Title: Title{Text: "count"}},
			HoverTemplate: fmt.Sprintf("%s=%%{x}<br>%s=%%{y}<br>count=%%{z}<extra></extra>", xLabel, yLabel),
		}},
		Layout: Layout{
			Title: title,
			XAxis: &Axis{Title: Title{Text: xLabel}, DTick: 1},
			YAxis: &Axis{Title: Title{Text: yLabel}, Type: "category"},
		},
	}
}

func densityFigure(title Title, points []DensityPoint, mapCfg config.MapConfig) Figure {
	lat := make([]float64, len(points))
	lon := make([]float64, len(points))
	z := make([]int, len(points))
	for i, p := range points {
		lat[i] = p.Point.Lat()
		lon[i] = p.Point.Lon()
		z[i] = p.Weight
	}

	return Figure{
		ID: FigureDensity,
		Data: []Trace{{
			Type:     "densitymap",
			Lat:      lat,
			Lon:      lon,
			Z:        z,
			Radius:   densityRadius,
			ColorBar: &ColorBar{Title: Title{Text: incidentsLabel}},
		}},
		Layout: Layout{
			Title: title,
			Map: &MapLayout{
				Style:  mapCfg.Style,
				Center: MapCenter{Lat: mapCfg.CenterLat, Lon: mapCfg.CenterLon},
				Zoom:   mapCfg.Zoom,
			},
		},
	}
}
