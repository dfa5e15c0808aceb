package models

// Department groups lecturers, students and courses.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is a unit of study offered by a department.
type Course struct {
	ID            string `db:"id" json:"id"`
	DepartmentID  string `db:"department_id" json:"department_id"`
	Name          string `db:"name" json:"name"`
	Credits       int    `db:"credits" json:"credits"`
	TheoryHours   int    `db:"theory_hours" json:"theory_hours"`
	PracticeHours int    `db:"practice_hours" json:"practice_hours"`
	Description   string `db:"description" json:"description"`
}

// Room is a physical teaching location sections are scheduled into.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
}
