package domain

import "time"

type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskSummary agrega los contadores del dashboard de un usuario.
type TaskSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Summarize cuenta tareas completas y pendientes.
func Summarize(tasks []Task) TaskSummary {
	summary := TaskSummary{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			summary.Completed++
		}
	}
	summary.Pending = summary.Total - summary.Completed
	return summary
}
