package models

// Condition is a coarse sky/precipitation label derived from a weather code.
type Condition string

const (
	ConditionClear  Condition = "Clear"
	ConditionCloudy Condition = "Cloudy"
	ConditionRain   Condition = "Rain"
	ConditionSnow   Condition = "Snow"
	// ConditionUnknown is empty so unmapped codes render as a blank label.
	ConditionUnknown Condition = ""
)

// ConditionFromCode maps a provider weather code to a Condition.
// Ranges are checked in order; Rain is tested before Snow.
func ConditionFromCode(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code > 0 && code <= 3:
		return ConditionCloudy
	case (code >= 5 && code <= 67) || (code >= 80 && code <= 99):
		return ConditionRain
	case code >= 71 && code <= 77:
		// 71-77 lies outside 5-67, so snow codes are not caught by Rain.
		return ConditionSnow
	default:
		return ConditionUnknown
	}
}

// MetricLabel returns a non-empty label for use in metrics.
func (c Condition) MetricLabel() string {
	if c == ConditionUnknown {
		return "unknown"
	}
	return string(c)
}
