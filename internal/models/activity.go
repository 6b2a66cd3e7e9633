package models

import "time"

// Modality selects the grading strategy that applies to an activity.
type Modality string

const (
	// ModalityChoiceBased activities are graded against flagged correct answers.
	ModalityChoiceBased Modality = "choice_based"
	// ModalityOrdering activities are graded positionally against a canonical sequence.
	ModalityOrdering Modality = "ordering"
	// ModalityFreeText activities always require a manual evaluation.
	ModalityFreeText Modality = "free_text"
)

// Modalities lists every supported modality.
var Modalities = []Modality{ModalityChoiceBased, ModalityOrdering, ModalityFreeText}

// Activity is a catalogue item a student can be assigned to.
type Activity struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	Modality     Modality   `gorm:"size:32;not null;index" json:"modality"`
	Difficulty   string     `gorm:"size:32" json:"difficulty"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Visible      bool       `gorm:"not null;default:true" json:"visible"`
	InstrumentID uint       `gorm:"not null;index" json:"instrument_id"`
	ProfessorID  *uint      `gorm:"index" json:"professor_id"`
	Questions    []Question `gorm:"foreignKey:ActivityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Question belongs to a choice-based or free-text activity.
type Question struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActivityID uint      `gorm:"not null;index" json:"activity_id"`
	Title      string    `gorm:"size:512;not null" json:"title"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	Answers    []Answer  `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
	Activity   *Activity `gorm:"foreignKey:ActivityID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Answer is one option of a question. IsCorrect must stay off student-facing payloads.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Text       string    `gorm:"size:512;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
