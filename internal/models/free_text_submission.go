package models

import "time"

// FreeTextSubmission is a student's written response awaiting manual evaluation.
type FreeTextSubmission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestionID  uint      `gorm:"not null;index" json:"question_id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	Response    string    `gorm:"type:text;not null" json:"response"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}
