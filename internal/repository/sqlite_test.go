package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mr1hm/crime-dashboard/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func incidentAt(date, clock, location, description string) models.Incident {
	d, _ := time.Parse("2006-01-02", date)
	c, _ := time.Parse("15:04:05", clock)
	return models.Incident{
		CrimeDate:      d,
		CrimeTime:      c,
		Location:       location,
		Description:    description,
		TotalIncidents: 1,
	}
}

func TestSQLiteDB_ReplaceAndLoad(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	first := incidentAt("2016-11-12", "02:35:00", "300 SAINT LOUIS ST", "ROBBERY - STREET")
	first.CrimeCode = "3JK"
	first.District = "SOUTHERN"
	first.Neighborhood = "Washington Village"
	first.Weapon = "KNIFE"
	first.Premise = "STREET"
	first.Latitude = 39.2847
	first.Longitude = -76.6217
	first.HasCoordinates = true

	second := incidentAt("2016-11-12", "02:56:00", "800 S BROADWAY", "LARCENY")

	if err := db.ReplaceIncidents(ctx, []models.Incident{first, second}); err != nil {
		t.Fatalf("ReplaceIncidents failed: %v", err)
	}

	got, err := db.LoadIncidents(ctx)
	if err != nil {
		t.Fatalf("LoadIncidents failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(got))
	}

	if got[0] != first {
		t.Errorf("first incident mismatch:\n got %+v\nwant %+v", got[0], first)
	}
	if got[1] != second {
		t.Errorf("second incident mismatch:\n got %+v\nwant %+v", got[1], second)
	}
	if got[1].HasCoordinates {
		t.Error("expected incident without coordinates to stay without coordinates")
	}
}

func TestSQLiteDB_ReplaceOverwritesSnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	old := []models.Incident{
		incidentAt("2015-01-01", "00:00:00", "A", "BURGLARY"),
		incidentAt("2015-01-02", "00:00:00", "A", "BURGLARY"),
		incidentAt("2015-01-03", "00:00:00", "B", "ARSON"),
	}
	if err := db.ReplaceIncidents(ctx, old); err != nil {
		t.Fatalf("ReplaceIncidents failed: %v", err)
	}

	fresh := []models.Incident{incidentAt("2017-06-30", "12:00:00", "C", "HOMICIDE")}
	if err := db.ReplaceIncidents(ctx, fresh); err != nil {
		t.Fatalf("ReplaceIncidents failed: %v", err)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 incident after replace, got %d", n)
	}

	got, err := db.LoadIncidents(ctx)
	if err != nil {
		t.Fatalf("LoadIncidents failed: %v", err)
	}
	if got[0].Location != "C" {
		t.Errorf("expected location 'C', got '%s'", got[0].Location)
	}
}

func TestSQLiteDB_KeepsSourceOrder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	in := []models.Incident{
		incidentAt("2017-01-01", "00:00:00", "Z", "X"),
		incidentAt("2013-01-01", "00:00:00", "A", "X"),
		incidentAt("2015-01-01", "00:00:00", "M", "X"),
	}
	if err := db.ReplaceIncidents(ctx, in); err != nil {
		t.Fatalf("ReplaceIncidents failed: %v", err)
	}

	got, err := db.LoadIncidents(ctx)
	if err != nil {
		t.Fatalf("LoadIncidents failed: %v", err)
	}
	for i, want := range []string{"Z", "A", "M"} {
		if got[i].Location != want {
			t.Errorf("row %d: expected location %s, got %s", i, want, got[i].Location)
		}
	}
}

func TestSQLiteDB_EmptySnapshot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := db.LoadIncidents(context.Background())
	if err != nil {
		t.Fatalf("LoadIncidents failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSQLiteDB_ReplaceRespectsCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.ReplaceIncidents(ctx, []models.Incident{incidentAt("2015-01-01", "00:00:00", "A", "X")})
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}
