package report

import (
	"time"

	"github.com/niatrack-data/internal/common/config"
)

const (
	suffixInitial = " inicial"
	suffixFinal   = " final"
)

// Options controls how the pipeline interprets a telemetry snapshot:
// which keys carry the trip id and station label, which station labels act
// as trip markers, and how timestamps are localized.
type Options struct {
	TripIDKey  string
	StationKey string
	AttrKeys   []string

	StartMarker      string
	EndMarker        string
	ClosingMarker    string
	DualVisitStation string
	TransitLabel     string

	// Station columns summed into the processing-time figure. Columns not
	// present in a given pivot contribute nothing.
	ProcessingStations []string

	Location *time.Location
}

// DefaultOptions returns the plant's production configuration.
func DefaultOptions() Options {
	return Options{
		TripIDKey:          "nia",
		StationKey:         "estacion",
		AttrKeys:           []string{"placa", "conductor", "empresa", "guia"},
		StartMarker:        "En Asignación",
		EndMarker:          "Desasignación",
		ClosingMarker:      "Desasignación",
		DualVisitStation:   "Balanza",
		TransitLabel:       "Ruta a Balanza",
		ProcessingStations: []string{"Balanza inicial", "Balanza final", "Descarga", "Barrido"},
		Location:           time.FixedZone("America/Lima", -5*3600),
	}
}

// FromConfig builds pipeline options from the service configuration.
func FromConfig(cfg config.ReportConfig) Options {
	return Options{
		TripIDKey:          cfg.TripIDKey,
		StationKey:         cfg.StationKey,
		AttrKeys:           cfg.AttrKeys,
		StartMarker:        cfg.StartMarker,
		EndMarker:          cfg.EndMarker,
		ClosingMarker:      cfg.ClosingMarker,
		DualVisitStation:   cfg.DualVisitStation,
		TransitLabel:       cfg.TransitLabel,
		ProcessingStations: cfg.ProcessingStations,
		Location:           time.FixedZone(cfg.TimezoneName, cfg.TimezoneOffsetH*3600),
	}
}
