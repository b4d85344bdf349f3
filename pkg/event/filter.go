package event

import (
	"fmt"
	"strings"
	"time"
)

const AllCategories = "all"

type DateFilter string

const (
	AnyDate     DateFilter = "any"
	ThisWeek    DateFilter = "week"
	ThisWeekend DateFilter = "weekend"
	NextWeek    DateFilter = "next-week"
)

func ParseDateFilter(s string) (DateFilter, error) {
	switch DateFilter(s) {
	case "", AnyDate:
		return AnyDate, nil
	case ThisWeek, ThisWeekend, NextWeek:
		return DateFilter(s), nil
	}
	return "", fmt.Errorf("unknown date filter %q", s)
}

type PriceFilter struct {
	Free bool
	Paid bool
}

// FilterState is what a browsing client has selected. The zero value of each field
// except PriceFilter means "no restriction".
type FilterState struct {
	Category    string
	SearchTerms []string
	DateFilter  DateFilter
	PriceFilter PriceFilter
	// DistanceFilter is accepted but not applied; events carry no coordinates.
	DistanceFilter string
}

func DefaultFilterState() FilterState {
	return FilterState{
		Category:       AllCategories,
		DateFilter:     AnyDate,
		PriceFilter:    PriceFilter{Free: true, Paid: true},
		DistanceFilter: "any",
	}
}

const week = 7 * 24 * time.Hour

// Filter returns the events that pass every predicate of state, in their original order.
// now anchors the date buckets; passing the same now makes Filter idempotent.
func Filter(events []Event, state FilterState, now time.Time) []Event {
	query := searchQuery(state.SearchTerms)
	result := make([]Event, 0, len(events))
	for _, e := range events {
		if !matchesCategory(e, state.Category) {
			continue
		}
		if query != "" && !strings.Contains(searchableText(e), query) {
			continue
		}
		if !matchesDate(e.Date, state.DateFilter, now) {
			continue
		}
		if !matchesPrice(e, state.PriceFilter) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matchesCategory(e Event, category string) bool {
	return category == "" || category == AllCategories || e.Category == category
}

func searchQuery(terms []string) string {
	nonEmpty := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.ToLower(strings.Join(nonEmpty, " "))
}

func searchableText(e Event) string {
	description := ""
	if e.Description != nil {
		description = *e.Description
	}
	return strings.ToLower(strings.Join([]string{e.Title, description, e.Category, e.Location, e.Organizer}, " "))
}

func matchesDate(date time.Time, filter DateFilter, now time.Time) bool {
	oneWeek := now.Add(week)
	switch filter {
	case ThisWeek:
		return !date.After(oneWeek)
	case NextWeek:
		return !date.Before(oneWeek) && !date.After(oneWeek.Add(week))
	case ThisWeekend:
		start, end := upcomingWeekend(now)
		return !date.Before(start) && date.Before(end)
	}
	return true
}

// upcomingWeekend returns [Saturday 00:00, Monday 00:00) of the weekend that is either
// in progress or next to come, in now's location.
func upcomingWeekend(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var saturday time.Time
	switch now.Weekday() {
	case time.Saturday:
		saturday = today
	case time.Sunday:
		saturday = today.AddDate(0, 0, -1)
	default:
		saturday = today.AddDate(0, 0, int(time.Saturday-now.Weekday()))
	}
	return saturday, saturday.AddDate(0, 0, 2)
}

func matchesPrice(e Event, filter PriceFilter) bool {
	if e.IsPaid() {
		return filter.Paid
	}
	return filter.Free
}
