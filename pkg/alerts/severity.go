package alerts

import "github.com/mfreeman451/routeradar/pkg/models"

// TrafficSeverity grades a traffic-low alert by how far current is below
// threshold: more than half below is critical, more than a quarter below is
// a warning.
func TrafficSeverity(current, threshold float64) models.Severity {
	if threshold <= 0 {
		return models.SeverityInfo
	}

	deficit := (threshold - current) / threshold * 100

	switch {
	case deficit > 50:
		return models.SeverityCritical
	case deficit > 25:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

// SeverityFor returns the severity of a new alert of the given kind.
func SeverityFor(kind models.AlertKind, current, threshold float64) models.Severity {
	if kind == models.KindTrafficLow {
		return TrafficSeverity(current, threshold)
	}

	return models.SeverityCritical
}
