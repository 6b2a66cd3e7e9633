package models

import "time"

// AssignmentStatus tracks whether the student has turned the work in.
type AssignmentStatus string

const (
	// AssignmentStatusPending indicates the activity was assigned but not completed.
	AssignmentStatusPending AssignmentStatus = "pending"
	// AssignmentStatusDone indicates the activity was turned in or graded.
	AssignmentStatusDone AssignmentStatus = "done"
)

// Assignment links one student to one activity and carries its grading state.
type Assignment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	StudentID   uint             `gorm:"not null;uniqueIndex:idx_assignment_pair,priority:1" json:"student_id"`
	ActivityID  uint             `gorm:"not null;uniqueIndex:idx_assignment_pair,priority:2;index" json:"activity_id"`
	Status      AssignmentStatus `gorm:"size:16;not null" json:"status"`
	Score       int              `gorm:"not null;default:0" json:"score"`
	Comment     string           `gorm:"type:text" json:"comment"`
	Corrected   bool             `gorm:"not null;default:false;index" json:"corrected"`
	CorrectedAt *time.Time       `json:"corrected_at"`
	Version     uint             `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Activity    Activity         `gorm:"foreignKey:ActivityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"activity"`
	Student     User             `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// NewAssignment returns an ungraded pending assignment for the pair.
func NewAssignment(studentID, activityID uint) Assignment {
	return Assignment{
		StudentID:  studentID,
		ActivityID: activityID,
		Status:     AssignmentStatusPending,
	}
}

// MarkCorrected stores a final score. Status is forced to done.
func (a *Assignment) MarkCorrected(score int, comment string, at time.Time) {
	a.Score = score
	a.Comment = comment
	a.Corrected = true
	a.Status = AssignmentStatusDone
	corrected := at
	a.CorrectedAt = &corrected
}

// MarkTurnedIn flags the work as done without assigning a final score.
func (a *Assignment) MarkTurnedIn() {
	a.Status = AssignmentStatusDone
}
