package dto

import "github.com/noah-isme/tempo-go-api/internal/models"

// StudentMetricsResponse summarises corrected assignments for a student.
type StudentMetricsResponse struct {
	StudentID          uint                        `json:"student_id"`
	TotalDone          int                         `json:"total_done"`
	AverageScore       float64                     `json:"average_score"`
	AverageScoreByType map[models.Modality]float64 `json:"average_score_by_type"`
}

// RosterEntryResponse is one student actively bonded to a professor.
type RosterEntryResponse struct {
	StudentID    uint   `json:"student_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	InstrumentID uint   `json:"instrument_id"`
}
