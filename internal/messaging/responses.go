package messaging

import (
	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/domain"
)

// Response is implemented only by the response types in this package.
type Response interface {
	isResponse()
}

// DataResponse is the full state an observer needs to render.
// CurrentLuminance is nil until the first sample exists.
type DataResponse struct {
	CurrentLuminance  *float64              `json:"currentLuminance"`
	TotalTrackedSites int                   `json:"totalTrackedSites"`
	Savings           domain.SavingsSummary `json:"savings"`
	PotentialSavingWh float64               `json:"potentialSavingWh"`
	Display           domain.DisplayInfo    `json:"display"`
	CPUUsage          *float64              `json:"cpuUsage,omitempty"`
	Source            string                `json:"source,omitempty"`
}

// LatestResponse carries the newest sample, nil when none exists.
type LatestResponse struct {
	Sample *domain.LuminanceSample `json:"sample"`
}

// AverageResponse carries an average in nits; empty ranges yield 0.
type AverageResponse struct {
	Average float64 `json:"average"`
}

// HistoryResponse carries samples in time order with their statistics.
type HistoryResponse struct {
	Samples []*domain.LuminanceSample `json:"samples"`
	Average float64                   `json:"average"`
	Min     float64                   `json:"min"`
	Max     float64                   `json:"max"`
}

// CountResponse carries a count.
type CountResponse struct {
	Count int `json:"count"`
}

// ThemeResponse carries a classification verdict.
type ThemeResponse struct {
	Mode        domain.ThemeMode   `json:"mode"`
	Signal      colorscheme.Signal `json:"signal"`
	DefinedDark bool               `json:"definedDark"`
}

// Ack acknowledges a command.
type Ack struct{}

func (DataResponse) isResponse()    {}
func (LatestResponse) isResponse()  {}
func (AverageResponse) isResponse() {}
func (HistoryResponse) isResponse() {}
func (CountResponse) isResponse()   {}
func (ThemeResponse) isResponse()   {}
func (Ack) isResponse()             {}
