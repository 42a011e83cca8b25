package models

// StatusError is the status value the backend uses to signal failure
const StatusError = "error"

// ForecastPoint is one predicted value with its confidence interval
type ForecastPoint struct {
	Date      Date    `json:"ds"`
	Predicted float64 `json:"yhat"`
	Lower     float64 `json:"yhat_lower"`
	Upper     float64 `json:"yhat_upper"`
}

// Valid reports whether Lower <= Predicted <= Upper holds
func (p ForecastPoint) Valid() bool {
	return p.Lower <= p.Predicted && p.Predicted <= p.Upper
}

// ForecastSummary holds the aggregates the backend derives for a range
type ForecastSummary struct {
	AvgPrice float64 `json:"avg_price"`
	MaxPrice float64 `json:"max_price"`
	MinPrice float64 `json:"min_price"`
	MaxDate  Date    `json:"max_date"`
	MinDate  Date    `json:"min_date"`
}

// IsZero reports whether the backend sent an empty summary ({}), which it
// does for ranges with no forecast points
func (s ForecastSummary) IsZero() bool {
	return s.MaxDate.IsZero() && s.MinDate.IsZero() &&
		s.AvgPrice == 0 && s.MaxPrice == 0 && s.MinPrice == 0
}

// ForecastResponse is the /api/forecast body, in either its success or error form
type ForecastResponse struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    []ForecastPoint `json:"data"`
	Summary ForecastSummary `json:"summary"`
}

// IsError reports whether the body is the error form
func (r *ForecastResponse) IsError() bool {
	return r.Status == StatusError
}

// InvalidPoints returns the indexes of points whose bounds are out of order
func (r *ForecastResponse) InvalidPoints() []int {
	var bad []int
	for i, p := range r.Data {
		if !p.Valid() {
			bad = append(bad, i)
		}
	}
	return bad
}
