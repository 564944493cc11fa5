package review

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinScore = 1
	MaxScore = 5
)

type Review struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`

	Professor string `gorm:"not null;column:professor" json:"professor"`
	Semester  string `gorm:"not null;column:semester" json:"semester"`
	Grade     string `gorm:"not null;column:grade" json:"grade"`

	Rating        int `gorm:"not null;column:rating" json:"rating"`
	Difficulty    int `gorm:"not null;column:difficulty" json:"difficulty"`
	Workload      int `gorm:"not null;column:workload" json:"workload"`
	LearningValue int `gorm:"not null;column:learning_value" json:"learningValue"`

	Comment string `gorm:"not null;type:text;column:comment" json:"comment"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`

	// CourseSlug is filled by aggregate writes from the locked course row. Not persisted.
	CourseSlug string `gorm:"-" json:"-"`
}

func (Review) TableName() string { return "review" }

// Scores is the numeric slice of a review read by the course statistics recompute.
type Scores struct {
	Rating        int
	Difficulty    int
	Workload      int
	LearningValue int
}

func (r *Review) Scores() Scores {
	return Scores{
		Rating:        r.Rating,
		Difficulty:    r.Difficulty,
		Workload:      r.Workload,
		LearningValue: r.LearningValue,
	}
}

// WithAuthor is a review joined with its author's username for public listings.
type WithAuthor struct {
	Review
	Username string `json:"username"`
}
