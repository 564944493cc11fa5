package course

import (
	"time"

	"github.com/google/uuid"
)

// Course carries materialized review statistics. Each Average* field is the mean of the
// matching review field over the course's current reviews, or 0 when it has none.
type Course struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code  string    `gorm:"uniqueIndex;not null;column:code" json:"code"`
	Title string    `gorm:"not null;column:title" json:"title"`
	Slug  string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`

	AverageRating        float64 `gorm:"not null;default:0;column:average_rating" json:"averageRating"`
	AverageDifficulty    float64 `gorm:"not null;default:0;column:average_difficulty" json:"averageDifficulty"`
	AverageWorkload      float64 `gorm:"not null;default:0;column:average_workload" json:"averageWorkload"`
	AverageLearningValue float64 `gorm:"not null;default:0;column:average_learning_value" json:"averageLearningValue"`
	ReviewCount          int     `gorm:"not null;default:0;column:review_count" json:"reviewCount"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Course) TableName() string { return "course" }

// Stats is the aggregate projection persisted onto a course row.
type Stats struct {
	AverageRating        float64
	AverageDifficulty    float64
	AverageWorkload      float64
	AverageLearningValue float64
	ReviewCount          int
}

// Fields returns the column map used for a single partial update.
func (s Stats) Fields() map[string]interface{} {
	return map[string]interface{}{
		"average_rating":         s.AverageRating,
		"average_difficulty":     s.AverageDifficulty,
		"average_workload":       s.AverageWorkload,
		"average_learning_value": s.AverageLearningValue,
		"review_count":           s.ReviewCount,
	}
}
