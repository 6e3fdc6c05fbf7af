package models

import "time"

// LessonProgress is the per-(tenant, user, lesson) completion and playback record
type LessonProgress struct {
	ID             int        `json:"id,omitempty"`
	TenantID       int        `json:"tenantId"`
	UserID         string     `json:"userId"`
	LessonID       int        `json:"lessonId"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CurrentTimeSec *float64   `json:"currentTimeSec,omitempty"`
	DurationSec    *float64   `json:"durationSec,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// UnitProgress aggregates a user's completion within one unit
type UnitProgress struct {
	ID                    int       `json:"id,omitempty"`
	TenantID              int       `json:"tenantId"`
	UserID                string    `json:"userId"`
	UnitID                int       `json:"unitId"`
	CompletedLessonsCount int       `json:"completedLessonsCount"`
	TotalLessonVideos     int       `json:"totalLessonVideos"`
	ProgressPercent       int       `json:"progressPercent"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// GlobalProgress aggregates a user's completion across all published lessons of a tenant
type GlobalProgress struct {
	ID                    int       `json:"id,omitempty"`
	TenantID              int       `json:"tenantId"`
	UserID                string    `json:"userId"`
	CompletedLessonsCount int       `json:"completedLessonsCount"`
	ProgressPercent       int       `json:"progressPercent"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// ProgressResult is the state left behind by an engine operation.
// Unit and Global are set only when the operation ran the cascade.
type ProgressResult struct {
	Lesson   LessonProgress  `json:"lesson"`
	Unit     *UnitProgress   `json:"unit,omitempty"`
	Global   *GlobalProgress `json:"global,omitempty"`
	Cascaded bool            `json:"cascaded"`
}

// VideoProgressRequest is a playback heartbeat
type VideoProgressRequest struct {
	CurrentTimeSec float64 `json:"currentTimeSec"`
	DurationSec    float64 `json:"durationSec"`
}

// CountResponse wraps a single counter
type CountResponse struct {
	Count int `json:"count"`
}

// Percent returns round(completed/total*100) clamped to 0..100, and 0 when total is not positive
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	// Integer half-up rounding of completed*100/total
	return (completed*200 + total) / (total * 2)
}

// UserProgress is every recomputed aggregate of one user
type UserProgress struct {
	Units  []UnitProgress `json:"units"`
	Global GlobalProgress `json:"global"`
}

// RepairReport summarizes a fan-out repair run
type RepairReport struct {
	TenantID      int                `json:"tenantId"`
	UnitID        int                `json:"unitId,omitempty"`
	UsersRepaired int                `json:"usersRepaired"`
	UsersFailed   int                `json:"usersFailed"`
	Stats         *ContentStatistics `json:"stats,omitempty"`
}
