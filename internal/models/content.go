package models

// Category groups units of a tenant
type Category struct {
	ID          int    `json:"id"`
	TenantID    int    `json:"tenantId"`
	Title       string `json:"title"`
	IsPublished bool   `json:"isPublished"`
}

// Unit groups lessons. TotalLessonVideos is the denormalized number of lessons in the unit,
// maintained by the content event hooks.
type Unit struct {
	ID                int    `json:"id"`
	TenantID          int    `json:"tenantId"`
	CategoryID        int    `json:"categoryId"`
	Title             string `json:"title"`
	TotalLessonVideos int    `json:"totalLessonVideos"`
	IsPublished       bool   `json:"isPublished"`
}

// Lesson is the atomic unit of learning content
type Lesson struct {
	ID              int    `json:"id"`
	TenantID        int    `json:"tenantId"`
	UnitID          int    `json:"unitId"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"durationSeconds"`
	IsPublished     bool   `json:"isPublished"`
}
