package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const header = "CrimeDate,CrimeTime,CrimeCode,Location,Description,Inside/Outside,Weapon,Post,District,Neighborhood,Longitude,Latitude,Location 1,Premise,Total Incidents\n"

const sample = header +
	`11/12/2016,02:35:00,3B,300 SAINT LOUIS ST,ROBBERY - STREET,O,,111,SOUTHERN,Washington Village,-76.63217,39.28374,"(39.2837400000, -76.6321700000)",STREET,1` + "\n" +
	`11/12/2016,02:56:00,3CF,800 S BROADWAY,ROBBERY - COMMERCIAL,I,FIREARM,213,SOUTHEASTERN,Fells Point,-76.59328,39.28324,"(39.2832400000, -76.5932800000)",BAR,1` + "\n" +
	`11/13/2016,23:59:59,6D,300 SAINT LOUIS ST,LARCENY FROM AUTO,O,,111,SOUTHERN,Washington Village,,,,STREET,2` + "\n"

func newTestSource() *CSVSource {
	return &CSVSource{
		DateLayout: "01/02/2006",
		TimeLayout: "15:04:05",
		Workers:    3,
		ChunkSize:  1,
	}
}

func TestParse_Sample(t *testing.T) {
	incidents, err := newTestSource().Parse(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, incidents, 3)

	first := incidents[0]
	assert.Equal(t, time.Date(2016, time.November, 12, 0, 0, 0, 0, time.UTC), first.CrimeDate)
	assert.Equal(t, 2, first.CrimeTime.Hour())
	assert.Equal(t, 35, first.CrimeTime.Minute())
	assert.Equal(t, "3B", first.CrimeCode)
	assert.Equal(t, "300 SAINT LOUIS ST", first.Location)
	assert.Equal(t, "ROBBERY - STREET", first.Description)
	assert.Equal(t, "SOUTHERN", first.District)
	assert.Equal(t, "Washington Village", first.Neighborhood)
	assert.Equal(t, "STREET", first.Premise)
	assert.Empty(t, first.Weapon)
	assert.True(t, first.HasCoordinates)
	assert.Equal(t, 39.28374, first.Latitude)
	assert.Equal(t, -76.63217, first.Longitude)
	assert.Equal(t, 1, first.TotalIncidents)

	assert.Equal(t, "FIREARM", incidents[1].Weapon)
	assert.Equal(t, time.Saturday, incidents[1].Weekday())

	third := incidents[2]
	assert.False(t, third.HasCoordinates)
	assert.Equal(t, 2, third.TotalIncidents)
	assert.Equal(t, 23, third.Hour())
}

func TestParse_KeepsFileOrderAcrossChunks(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 250; i++ {
		fmt.Fprintf(&b, "01/01/2015,00:00:00,4E,%d MAIN ST,ASSAULT,O,,1,CENTRAL,Downtown,-76.6,39.3,,ROW,1\n", i)
	}

	src := newTestSource()
	src.ChunkSize = 7
	incidents, err := src.Parse(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, incidents, 250)

	for i, in := range incidents {
		require.Equal(t, fmt.Sprintf("%d MAIN ST", i), in.Location)
	}
}

func TestParse_MinimalColumns(t *testing.T) {
	doc := "Location,Description,CrimeDate,CrimeTime,Latitude,Longitude,Total Incidents\n" +
		"A,BURGLARY,02/29/2020,13:00:00,39.3,-76.6,1\n"

	incidents, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "A", incidents[0].Location)
	assert.Empty(t, incidents[0].District)
	assert.Equal(t, time.February, incidents[0].CrimeDate.Month())
}

func TestParse_StripsBOM(t *testing.T) {
	doc := "\ufeff" + sample
	incidents, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, incidents, 3)
}

func TestParse_HeaderOnly(t *testing.T) {
	incidents, err := newTestSource().Parse(context.Background(), strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestParse_EmptyFile(t *testing.T) {
	_, err := newTestSource().Parse(context.Background(), strings.NewReader(""))
	require.Error(t, err)
}

func TestParse_MissingColumn(t *testing.T) {
	doc := "CrimeDate,CrimeTime,Location,Description,Latitude,Longitude\n" +
		"11/12/2016,02:35:00,A,LARCENY,39.3,-76.6\n"

	_, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Total Incidents")
}

func TestParse_MalformedRowsFailWholeLoad(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"bad date", "2016-11-12,02:35:00,3B,A,LARCENY,O,,1,S,N,-76.6,39.3,,ST,1", colCrimeDate},
		{"bad time", "11/12/2016,0235,3B,A,LARCENY,O,,1,S,N,-76.6,39.3,,ST,1", colCrimeTime},
		{"bad latitude", "11/12/2016,02:35:00,3B,A,LARCENY,O,,1,S,N,-76.6,north,,ST,1", colLatitude},
		{"bad longitude", "11/12/2016,02:35:00,3B,A,LARCENY,O,,1,S,N,west,39.3,,ST,1", colLongitude},
		{"bad total", "11/12/2016,02:35:00,3B,A,LARCENY,O,,1,S,N,-76.6,39.3,,ST,many", colTotalIncidents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample + tt.row + "\n"
			_, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
			require.Error(t, err)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 4, rowErr.Row)
			assert.Equal(t, tt.column, rowErr.Column)
		})
	}
}

func TestParse_NonFiniteCellsAreMissing(t *testing.T) {
	tests := []struct {
		name       string
		lon, lat   string
		total      string
		wantCoords bool
		wantTotal  int
	}{
		{"NaN coordinates", "NaN", "NaN", "1", false, 1},
		{"lowercase nan latitude", "-76.6", "nan", "2", false, 2},
		{"infinite longitude", "+Inf", "39.3", "1", false, 1},
		{"NA tokens", "NA", "null", "1", false, 1},
		{"NaN total", "-76.6", "39.3", "NaN", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample + fmt.Sprintf("11/12/2016,02:35:00,3B,A,LARCENY,O,,1,S,N,%s,%s,,ST,%s\n", tt.lon, tt.lat, tt.total)
			incidents, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
			require.NoError(t, err)
			require.Len(t, incidents, 4)

			got := incidents[3]
			assert.Equal(t, tt.wantTotal, got.TotalIncidents)
			assert.Equal(t, tt.wantCoords, got.HasCoordinates)
			if !tt.wantCoords {
				assert.Zero(t, got.Latitude)
				assert.Zero(t, got.Longitude)
			}
		})
	}
}

func TestParse_InfiniteTotalFailsLoad(t *testing.T) {
	doc := sample + "11/12/2016,02:35:00,3B,A,LARCENY,O,,1,S,N,-76.6,39.3,,ST,Inf\n"
	_, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, colTotalIncidents, rowErr.Column)
}

func TestParse_ReportsLowestBadRow(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 1; i <= 40; i++ {
		date := "01/01/2015"
		if i == 17 || i == 33 {
			date = "not-a-date"
		}
		fmt.Fprintf(&b, "%s,00:00:00,4E,A,ASSAULT,O,,1,C,D,-76.6,39.3,,ROW,1\n", date)
	}

	src := newTestSource()
	src.ChunkSize = 4
	_, err := src.Parse(context.Background(), strings.NewReader(b.String()))

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 17, rowErr.Row)
}

func TestParse_WrongFieldCount(t *testing.T) {
	doc := sample + "11/12/2016,02:35:00,3B\n"
	_, err := newTestSource().Parse(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource().Parse(ctx, strings.NewReader(sample))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadIncidents_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Baltimore911.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	src := newTestSource()
	src.Path = path

	incidents, err := src.LoadIncidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, incidents, 3)
}

func TestLoadIncidents_MissingFile(t *testing.T) {
	src := newTestSource()
	src.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := src.LoadIncidents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadIncidents_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Baltimore911.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	src := newTestSource()
	src.Path = path

	first, err := src.LoadIncidents(context.Background())
	require.NoError(t, err)
	second, err := src.LoadIncidents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
