package model

import "sort"

// EmployeeStats is the per-employee task breakdown served by the statistics
// endpoint.
type EmployeeStats struct {
	EmployeeID string         `json:"_id"`
	Name       string         `json:"name,omitempty"`
	TaskCounts map[string]int `json:"taskCounts"`
}

// TaskCount is one row of a task breakdown.
type TaskCount struct {
	Task  string `json:"task"`
	Count int    `json:"count"`
}

// Total returns the number of tasks across all types.
func (s *EmployeeStats) Total() int {
	total := 0
	for _, n := range s.TaskCounts {
		total += n
	}
	return total
}

// Breakdown returns the counts ordered by count, then task name.
func (s *EmployeeStats) Breakdown() []TaskCount {
	rows := make([]TaskCount, 0, len(s.TaskCounts))
	for task, n := range s.TaskCounts {
		rows = append(rows, TaskCount{Task: task, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Task < rows[j].Task
	})
	return rows
}
