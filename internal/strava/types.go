package strava

import "time"

// SummaryActivity is the subset of Strava's activity representation the
// dashboard consumes. Distances arrive in metres, times in seconds.
type SummaryActivity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SportType   string    `json:"sport_type"`
	Type        string    `json:"type"`
	Distance    float64   `json:"distance"`
	MovingTime  int       `json:"moving_time"`
	ElapsedTime int       `json:"elapsed_time"`
	StartDate   time.Time `json:"start_date"`
	Calories    float64   `json:"calories"`
	Kilojoules  float64   `json:"kilojoules"`
}

// Sport normalises the activity type; newer API payloads use sport_type,
// older ones only type.
func (a SummaryActivity) Sport() string {
	if a.SportType != "" {
		return a.SportType
	}
	if a.Type != "" {
		return a.Type
	}
	return "Workout"
}

// EstimatedCalories falls back to a kilojoule-derived estimate when the
// summary omits calories. 1 kJ of external work burns roughly 1 kcal.
func (a SummaryActivity) EstimatedCalories() float64 {
	if a.Calories > 0 {
		return a.Calories
	}
	return a.Kilojoules
}
