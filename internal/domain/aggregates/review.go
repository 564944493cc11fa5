package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/domain"
)

var ReviewAggregateContract = Contract{
	Name:             "Catalog.ReviewAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns review row writes together with the owning course's statistics under a course row lock.",
}

// ReviewAggregate owns the review lifecycle and the course statistics derived from it.
//
// Failures are *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeForbidden, CodeConflict, CodeRetryable, CodeInternal.
type ReviewAggregate interface {
	Aggregate

	// Create inserts a review owned by Identity and recomputes the course statistics.
	Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error)

	// Get returns the review when Identity owns it.
	Get(ctx context.Context, identity, reviewID uuid.UUID) (*domain.Review, error)

	// Update merges the provided fields and recomputes the course statistics.
	Update(ctx context.Context, in UpdateReviewInput) (*domain.Review, error)

	// Delete removes the review, recomputes the course statistics and returns the removed row.
	Delete(ctx context.Context, identity, reviewID uuid.UUID) (*domain.Review, error)
}

type CreateReviewInput struct {
	Identity uuid.UUID
	// CourseRef is a course id or slug.
	CourseRef string
	Fields    ReviewFields
}

type UpdateReviewInput struct {
	Identity uuid.UUID
	ReviewID uuid.UUID
	Fields   ReviewFields
}

// ReviewFields is a review payload. Nil means the field was not supplied.
type ReviewFields struct {
	Professor     *string `json:"professor"`
	Semester      *string `json:"semester"`
	Grade         *string `json:"grade"`
	Rating        *int    `json:"rating"`
	Difficulty    *int    `json:"difficulty"`
	Workload      *int    `json:"workload"`
	LearningValue *int    `json:"learningValue"`
	Comment       *string `json:"comment"`
}

// ValidateComplete requires every field and checks each value.
func (f ReviewFields) ValidateComplete(op string) error {
	var missing []string
	for _, name := range []string{"professor", "semester", "grade", "rating", "difficulty", "workload", "learningValue", "comment"} {
		if !f.has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return NewError(CodeValidation, op, "missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return f.ValidatePartial(op)
}

// ValidatePartial checks only the supplied fields.
func (f ReviewFields) ValidatePartial(op string) error {
	texts := []struct {
		name string
		v    *string
	}{
		{"professor", f.Professor},
		{"semester", f.Semester},
		{"grade", f.Grade},
		{"comment", f.Comment},
	}
	for _, t := range texts {
		if t.v != nil && strings.TrimSpace(*t.v) == "" {
			return NewError(CodeValidation, op, t.name+" must not be empty", nil)
		}
	}
	scores := []struct {
		name string
		v    *int
	}{
		{"rating", f.Rating},
		{"difficulty", f.Difficulty},
		{"workload", f.Workload},
		{"learningValue", f.LearningValue},
	}
	for _, sc := range scores {
		if sc.v != nil && (*sc.v < domain.MinReviewScore || *sc.v > domain.MaxReviewScore) {
			return NewError(CodeValidation, op, fmt.Sprintf("%s must be between %d and %d", sc.name, domain.MinReviewScore, domain.MaxReviewScore), nil)
		}
	}
	return nil
}

// IsEmpty reports whether no field was supplied.
func (f ReviewFields) IsEmpty() bool {
	return f == ReviewFields{}
}

// Apply shallow-merges the supplied fields onto r.
func (f ReviewFields) Apply(r *domain.Review) {
	if f.Professor != nil {
		r.Professor = strings.TrimSpace(*f.Professor)
	}
	if f.Semester != nil {
		r.Semester = strings.TrimSpace(*f.Semester)
	}
	if f.Grade != nil {
		r.Grade = strings.TrimSpace(*f.Grade)
	}
	if f.Rating != nil {
		r.Rating = *f.Rating
	}
	if f.Difficulty != nil {
		r.Difficulty = *f.Difficulty
	}
	if f.Workload != nil {
		r.Workload = *f.Workload
	}
	if f.LearningValue != nil {
		r.LearningValue = *f.LearningValue
	}
	if f.Comment != nil {
		r.Comment = *f.Comment
	}
}

// Updates returns the column map for the supplied fields.
func (f ReviewFields) Updates() map[string]interface{} {
	out := map[string]interface{}{}
	if f.Professor != nil {
		out["professor"] = strings.TrimSpace(*f.Professor)
	}
	if f.Semester != nil {
		out["semester"] = strings.TrimSpace(*f.Semester)
	}
	if f.Grade != nil {
		out["grade"] = strings.TrimSpace(*f.Grade)
	}
	if f.Rating != nil {
		out["rating"] = *f.Rating
	}
	if f.Difficulty != nil {
		out["difficulty"] = *f.Difficulty
	}
	if f.Workload != nil {
		out["workload"] = *f.Workload
	}
	if f.LearningValue != nil {
		out["learning_value"] = *f.LearningValue
	}
	if f.Comment != nil {
		out["comment"] = *f.Comment
	}
	return out
}

func (f ReviewFields) has(name string) bool {
	switch name {
	case "professor":
		return f.Professor != nil
	case "semester":
		return f.Semester != nil
	case "grade":
		return f.Grade != nil
	case "rating":
		return f.Rating != nil
	case "difficulty":
		return f.Difficulty != nil
	case "workload":
		return f.Workload != nil
	case "learningValue":
		return f.LearningValue != nil
	case "comment":
		return f.Comment != nil
	}
	return false
}

// RequireOwner fails with CodeForbidden unless identity authored r.
func RequireOwner(op string, identity uuid.UUID, r *domain.Review) error {
	if r == nil {
		return NewError(CodeNotFound, op, "review not found", nil)
	}
	if identity == uuid.Nil || r.UserID != identity {
		return NewError(CodeForbidden, op, "not the owner of this review", nil)
	}
	return nil
}
