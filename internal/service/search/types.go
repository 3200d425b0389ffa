package search

// Metrics are the four values Search Console reports per row.
type Metrics struct {
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// DateRow is one day of a date series.
type DateRow struct {
	Date string `json:"date"`
	Metrics
}

// URLRow is one page of a URL series.
type URLRow struct {
	URL string `json:"url"`
	Metrics
}

// Site is a property the signed-in user can query.
type Site struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

type SeriesRequest struct {
	SiteURL    string `form:"site_url"`
	PageFilter string `form:"page_filter"`
}

type TimeSeriesRequest struct {
	SiteURL string `form:"site_url"`
	PageURL string `form:"page_url"`
}
