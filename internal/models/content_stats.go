package models

import "time"

// ContentStatistics holds the per-tenant published content totals
type ContentStatistics struct {
	TenantID        int       `json:"tenantId"`
	TotalLessons    int       `json:"totalLessons"`
	TotalUnits      int       `json:"totalUnits"`
	TotalCategories int       `json:"totalCategories"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StatsCounter names one of the ContentStatistics counters
type StatsCounter string

const (
	CounterLessons    StatsCounter = "lessons"
	CounterUnits      StatsCounter = "units"
	CounterCategories StatsCounter = "categories"
)

// Column returns the content_statistics column backing the counter
func (c StatsCounter) Column() (string, bool) {
	switch c {
	case CounterLessons:
		return "total_lessons", true
	case CounterUnits:
		return "total_units", true
	case CounterCategories:
		return "total_categories", true
	default:
		return "", false
	}
}
