// Package messaging defines the closed set of requests observers and page
// agents may send, and dispatches each to exactly one handler.
package messaging

import (
	"time"

	"github.com/quentinrf/darkwatt/internal/domain"
)

// DateLayout is the calendar-day key format used by GetDayAverage.
const DateLayout = "2006-01-02"

// Request is implemented only by the request types in this package.
type Request interface {
	isRequest()
}

// GetData asks for the full current state.
type GetData struct{}

// GetLatest asks for the most recent stored sample.
type GetLatest struct{}

// GetRangeAverage averages samples over [Start, End).
type GetRangeAverage struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GetDayAverage averages one local calendar day, Date formatted as DateLayout.
type GetDayAverage struct {
	Date string `json:"date"`
}

// GetHistory returns samples over [Start, End) with statistics.
type GetHistory struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// GetTotalTrackedSites counts distinct sampled surfaces.
type GetTotalTrackedSites struct{}

// FocusChanged reports the surface the user is now looking at.
// An empty Source means nothing observable is focused.
type FocusChanged struct {
	Source string `json:"source"`
}

// ReportTheme carries a theme verdict computed by the page side.
type ReportTheme struct {
	Source string           `json:"source"`
	Mode   domain.ThemeMode `json:"mode"`
}

// ClassifyDocument asks the service to classify raw HTML. When Source is
// set the verdict is recorded as if the page had reported it.
type ClassifyDocument struct {
	Source string `json:"source,omitempty"`
	HTML   string `json:"html"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// LoadConfig asks the service to re-read its configuration.
type LoadConfig struct{}

func (GetData) isRequest()              {}
func (GetLatest) isRequest()            {}
func (GetRangeAverage) isRequest()      {}
func (GetDayAverage) isRequest()        {}
func (GetHistory) isRequest()           {}
func (GetTotalTrackedSites) isRequest() {}
func (FocusChanged) isRequest()         {}
func (ReportTheme) isRequest()          {}
func (ClassifyDocument) isRequest()     {}
func (LoadConfig) isRequest()           {}
