package review

// Compliance buckets an overall score for display.
type Compliance struct {
	Label  string `json:"label"`
	Status string `json:"status"`
}

func ComplianceOf(score float64) Compliance {
	pct := score * 100
	switch {
	case pct >= 95:
		return Compliance{Label: "Bardzo wysoka", Status: "very-high"}
	case pct >= 75:
		return Compliance{Label: "Wysoka", Status: "high"}
	case pct >= 50:
		return Compliance{Label: "Średnia", Status: "medium"}
	case pct >= 25:
		return Compliance{Label: "Niska", Status: "low"}
	default:
		return Compliance{Label: "Bardzo niska", Status: "very-low"}
	}
}
