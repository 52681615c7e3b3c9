package triage

import (
	"fmt"

	"offer_manager/models"
)

type AnomalyKind string

const (
	AnomalySourceUnavailable   AnomalyKind = "source_unavailable"
	AnomalyInterestingVanished AnomalyKind = "interesting_vanished"
)

// Anomaly is an advisory event found during reconciliation. None of them
// stop the session from starting.
type Anomaly struct {
	Kind     AnomalyKind
	Source   string
	Endpoint string // source unavailable only
	Err      error  // source unavailable only
	Name     string // interesting vanished only
	URL      string // interesting vanished only
}

func SourceUnavailable(source, endpoint string, err error) Anomaly {
	return Anomaly{Kind: AnomalySourceUnavailable, Source: source, Endpoint: endpoint, Err: err}
}

func InterestingVanished(l models.NewListing) Anomaly {
	return Anomaly{Kind: AnomalyInterestingVanished, Source: l.Source, Name: l.Name, URL: l.URL}
}

func (a Anomaly) String() string {
	switch a.Kind {
	case AnomalySourceUnavailable:
		if a.Err != nil {
			return fmt.Sprintf("%s unavailable (%s): %v", a.Source, a.Endpoint, a.Err)
		}
		return fmt.Sprintf("%s unavailable (%s)", a.Source, a.Endpoint)
	case AnomalyInterestingVanished:
		return fmt.Sprintf("- %s : %s", a.Source, a.Name)
	}
	return string(a.Kind)
}

// SplitAnomalies separates failed sources from vanished offers, keeping order.
func SplitAnomalies(anomalies []Anomaly) (unavailable, vanished []Anomaly) {
	for _, a := range anomalies {
		switch a.Kind {
		case AnomalySourceUnavailable:
			unavailable = append(unavailable, a)
		case AnomalyInterestingVanished:
			vanished = append(vanished, a)
		}
	}
	return unavailable, vanished
}
