package rental

import "github.com/erazemk/skatedesk/internal/model"

// StatusCounts tallies items of one type by status.
type StatusCounts struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Rented      int `json:"rented"`
	Maintenance int `json:"maintenance"`
}

// Listing is the dashboard row for one item.
type Listing struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Status model.Status `json:"status"`
}

// TypeSummary is the dashboard section for one item type.
type TypeSummary struct {
	Counts StatusCounts `json:"counts"`
	Items  []Listing    `json:"items"`
}

// Dashboard is the aggregated view of the whole inventory.
type Dashboard struct {
	Skates     TypeSummary      `json:"skates"`
	Skatemates TypeSummary      `json:"skatemates"`
	Recent     []model.Activity `json:"recent,omitempty"`
}

// Summarize counts items by status and lists them in the given order.
// Missing or unknown statuses count as available.
func Summarize(items []model.Item) TypeSummary {
	s := TypeSummary{Items: make([]Listing, 0, len(items))}
	for _, it := range items {
		status := it.Status.OrDefault()
		s.Counts.Total++
		switch status {
		case model.StatusRented:
			s.Counts.Rented++
		case model.StatusMaintenance:
			s.Counts.Maintenance++
		default:
			s.Counts.Available++
		}
		s.Items = append(s.Items, Listing{ID: it.ID, Title: it.Title, Status: status})
	}
	return s
}

// Aggregate builds the dashboard from the two item populations.
func Aggregate(skates, skatemates []model.Item) *Dashboard {
	return &Dashboard{
		Skates:     Summarize(skates),
		Skatemates: Summarize(skatemates),
	}
}
