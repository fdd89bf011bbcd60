package board

import (
	"github.com/hiroki-koketsu/kanban-board/internal/model"
)

// Summary is the headline numbers shown on the dashboard.
type Summary struct {
	Total         int                 `json:"total"`
	ByState       map[model.State]int `json:"by_state"`
	Urgent        int                 `json:"urgent"`
	NextUrgentDue model.Date          `json:"next_urgent_due"`
}

// Summarize counts tasks per state and finds the earliest due date among
// urgent tasks that are not done.
func Summarize(tasks []model.Task) Summary {
	s := Summary{
		Total:   len(tasks),
		ByState: make(map[model.State]int, len(model.States)),
	}
	for _, st := range model.States {
		s.ByState[st] = 0
	}
	for _, t := range tasks {
		s.ByState[t.State]++
		if t.Priority != model.PriorityUrgent {
			continue
		}
		s.Urgent++
		if t.State == model.StateDone || !t.DueDate.IsSet() {
			continue
		}
		if !s.NextUrgentDue.IsSet() || t.DueDate.Before(s.NextUrgentDue.Time) {
			s.NextUrgentDue = t.DueDate
		}
	}
	return s
}
