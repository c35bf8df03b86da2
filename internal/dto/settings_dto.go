package dto

type SortSettingsRequest struct {
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type CheckInIntervalRequest struct {
	Interval string `json:"interval"`
}

type CheckInEveryRequest struct {
	Every int `json:"every"`
}

type CheckInEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SettingsResponse is the normalized view of the user's settings document.
type SettingsResponse struct {
	SortBy    string          `json:"sort_by"`
	SortOrder string          `json:"sort_order"`
	CheckIn   CheckInResponse `json:"check_in"`
}

type CheckInResponse struct {
	Interval string `json:"interval"`
	Every    int    `json:"every,omitempty"`
	Enabled  bool   `json:"enabled"`
}
