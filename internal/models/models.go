package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Activity{},
		&Question{},
		&Answer{},
		&OrderingActivity{},
		&FreeTextSubmission{},
		&Assignment{},
		&ProfessorStudentBond{},
		&AuditLog{},
	}
}
