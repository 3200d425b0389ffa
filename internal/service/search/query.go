package search

import (
	"time"

	"google.golang.org/api/searchconsole/v1"
)

const (
	DimensionDate = "date"
	DimensionPage = "page"

	// RowLimit is the most rows one request asks for; there is no paging.
	RowLimit = 25000
	// DataStateAll includes fresh data that Google has not finalized yet.
	DataStateAll = "all"

	windowDays = 10
	dateLayout = "2006-01-02"
)

const (
	OperatorContains = "contains"
	OperatorEquals   = "equals"
)

// Filter restricts a query to pages matching Expression.
type Filter struct {
	Operator   string
	Expression string
}

// Contains matches every page whose URL contains expr.
func Contains(expr string) Filter {
	return Filter{Operator: OperatorContains, Expression: expr}
}

// Equals matches exactly one page URL.
func Equals(expr string) Filter {
	return Filter{Operator: OperatorEquals, Expression: expr}
}

// Query is a Search Analytics request bound to a property.
type Query struct {
	SiteURL string
	Request *searchconsole.SearchAnalyticsQueryRequest
}

type QueryBuilder struct {
	now func() time.Time
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{now: time.Now}
}

// Build computes the [today-10, today] window on every call. A filter with
// an empty expression adds no filter group.
func (b *QueryBuilder) Build(siteURL string, dimensions []string, filter Filter) Query {
	end := b.now()
	start := end.AddDate(0, 0, -windowDays)

	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Dimensions: append([]string(nil), dimensions...),
		RowLimit:   RowLimit,
		DataState:  DataStateAll,
	}

	if filter.Expression != "" {
		req.DimensionFilterGroups = []*searchconsole.ApiDimensionFilterGroup{{
			Filters: []*searchconsole.ApiDimensionFilter{{
				Dimension:  DimensionPage,
				Operator:   filter.Operator,
				Expression: filter.Expression,
			}},
		}}
	}

	return Query{SiteURL: siteURL, Request: req}
}
