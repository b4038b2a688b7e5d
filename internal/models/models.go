package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Course{},
		&Semester{},
		&MarkComponent{},
		&Enrollment{},
		&Mark{},
		&Attendance{},
		&Result{},
		&ActivityLog{},
	}
}
