package api

import (
	"github.com/mr1hm/crime-dashboard/internal/models"
	"github.com/paulmach/orb/geojson"
)

// toGeoJSON exports incidents as point features. Incidents without
// coordinates have no geometry and are left out.
func toGeoJSON(incidents []models.Incident) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i := range incidents {
		in := &incidents[i]
		if !in.HasCoordinates {
			continue
		}

		f := geojson.NewFeature(in.Point())
		f.Properties = geojson.Properties{
			"crime_date":      in.CrimeDate.Format("2006-01-02"),
			"crime_time":      in.CrimeTime.Format("15:04:05"),
			"crime_code":      in.CrimeCode,
			"description":     in.Description,
			"location":        in.Location,
			"district":        in.District,
			"neighborhood":    in.Neighborhood,
			"weapon":          in.Weapon,
			"premise":         in.Premise,
			"total_incidents": in.TotalIncidents,
		}
		fc.Append(f)
	}

	return fc
}
