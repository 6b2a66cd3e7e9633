package models

import "time"

// ProfessorStudentBond scopes which students a professor may review.
type ProfessorStudentBond struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfessorID  uint      `gorm:"not null;uniqueIndex:idx_bond_pair,priority:1" json:"professor_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_bond_pair,priority:2;index" json:"student_id"`
	InstrumentID uint      `gorm:"not null;uniqueIndex:idx_bond_pair,priority:3" json:"instrument_id"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Student      User      `gorm:"foreignKey:StudentID" json:"student"`
}
