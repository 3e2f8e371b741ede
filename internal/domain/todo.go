package domain

import (
	"slices"
	"time"
)

// DateLayout is the wire format of Todo.Date in forms and JSON.
const DateLayout = "2006-01-02"

// Gender is the value of the form's gender radio group.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Genders lists the valid genders in display order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// Todo is a stored record. ID is assigned by the repository on creation
// and never changes afterwards.
type Todo struct {
	ID       string    `json:"id"`
	UserName string    `json:"userName"`
	Gender   Gender    `json:"gender"`
	Hobbies  []string  `json:"hobbies"`
	Age      int       `json:"age"`
	Date     time.Time `json:"date"`
	TaskName string    `json:"taskName"`
	Status   string    `json:"status"`
}

// Draft is a Todo that has not been stored yet, so it has no ID.
type Draft struct {
	UserName string
	Gender   Gender
	Hobbies  []string
	Age      int
	Date     time.Time
	TaskName string
	Status   string
}

// WithID builds the stored form of the draft.
func (d Draft) WithID(id string) Todo {
	return Todo{
		ID:       id,
		UserName: d.UserName,
		Gender:   d.Gender,
		Hobbies:  slices.Clone(d.Hobbies),
		Age:      d.Age,
		Date:     d.Date,
		TaskName: d.TaskName,
		Status:   d.Status,
	}
}

// Draft strips the ID.
func (t Todo) Draft() Draft {
	return Draft{
		UserName: t.UserName,
		Gender:   t.Gender,
		Hobbies:  slices.Clone(t.Hobbies),
		Age:      t.Age,
		Date:     t.Date,
		TaskName: t.TaskName,
		Status:   t.Status,
	}
}

// Clone returns a deep copy; stored records are only ever handed out as clones.
func (t Todo) Clone() Todo {
	t.Hobbies = slices.Clone(t.Hobbies)
	return t
}

// DateOnly truncates t to its calendar day, expressed at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Options are the configured choices offered by the form.
type Options struct {
	AgeMin   int
	AgeMax   int
	Hobbies  []string
	Statuses []string
}
