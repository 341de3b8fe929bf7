package report

import "github.com/niatrack-data/pkg/trips/models"

// Relabel disambiguates repeated visits to the dual-visit station within one
// trip. The earliest occurrence becomes "<station> inicial" and the latest
// "<station> final"; when a single occurrence plays both roles, the "final"
// tag wins. The transit event immediately preceding each tagged occurrence
// is retagged to match the visit it led into. Every other event keeps its
// raw station label.
//
// A station visited more than twice only gets its first and last occurrence
// tagged; middle visits keep the raw label.
//
// The input sequence is never mutated; a relabeled copy is returned.
func Relabel(events []models.EventRecord, opts Options) []models.EventRecord {
	out := make([]models.EventRecord, len(events))
	for i, e := range events {
		e.Label = e.Station
		out[i] = e
	}

	var visits []int
	for i, e := range out {
		if e.Station == opts.DualVisitStation {
			visits = append(visits, i)
		}
	}
	if len(visits) == 0 {
		return out
	}

	first := visits[0]
	last := visits[len(visits)-1]

	tag(out, first, opts, suffixInitial)
	tag(out, last, opts, suffixFinal)

	return out
}

// tag applies the occurrence suffix to the station event at idx and to its
// immediately preceding transit event, when there is one.
func tag(events []models.EventRecord, idx int, opts Options, suffix string) {
	events[idx].Label = opts.DualVisitStation + suffix
	if idx > 0 && events[idx-1].Station == opts.TransitLabel {
		events[idx-1].Label = opts.TransitLabel + suffix
	}
}
