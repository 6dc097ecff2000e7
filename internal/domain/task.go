package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Category string

const (
	CategoryHome     Category = "home"
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHome, CategoryPersonal, CategoryWork:
		return true
	}
	return false
}

// Task es un item de la lista de un unico usuario.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Category    Category   `json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TaskPatch contiene los campos a modificar; nil significa sin cambios.
// ClearDueDate borra la fecha limite.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Category     *Category
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Priority == nil &&
		p.Category == nil &&
		p.DueDate == nil &&
		!p.ClearDueDate &&
		p.Completed == nil
}
