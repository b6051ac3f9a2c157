package domain

// SavingsSummary is the savings view handed to observers, in watt-hours.
type SavingsSummary struct {
	CurrentSite float64 `json:"currentSite"`
	Today       float64 `json:"today"`
	Week        float64 `json:"week"`
	Total       float64 `json:"total"`
}

// Changes is a partial state update fanned out to observers.
// Nil fields were not touched by the producing event.
type Changes struct {
	Source            string          `json:"source,omitempty"`
	CurrentLuminance  *float64        `json:"currentLuminance,omitempty"`
	TotalTrackedSites *int            `json:"totalTrackedSites,omitempty"`
	Savings           *SavingsSummary `json:"savings,omitempty"`
	PotentialSavingWh *float64        `json:"potentialSavingWh,omitempty"`
	CPUUsage          *float64        `json:"cpuUsage,omitempty"`
	Display           *DisplayInfo    `json:"display,omitempty"`
	Theme             *ThemeMode      `json:"theme,omitempty"`
}

// Empty reports whether the update carries nothing.
func (c Changes) Empty() bool {
	return c.CurrentLuminance == nil &&
		c.TotalTrackedSites == nil &&
		c.Savings == nil &&
		c.PotentialSavingWh == nil &&
		c.CPUUsage == nil &&
		c.Display == nil &&
		c.Theme == nil
}
