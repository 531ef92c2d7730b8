package model

import "time"

type Submission struct {
	ContestID   string    `json:"contest_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Photo       string    `json:"photo"`
	TaskInfo    string    `json:"task_info"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SameEntry reports whether two submissions carry the same content. Resubmitting the
// same entry is a no-op.
func (s Submission) SameEntry(o Submission) bool {
	return s.ContestID == o.ContestID && s.Email == o.Email && s.Name == o.Name &&
		s.Photo == o.Photo && s.TaskInfo == o.TaskInfo
}

// Winner is the part of a submission copied onto the contest once declared.
type Winner struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Photo    string `json:"photo"`
	TaskInfo string `json:"task_info"`
}

func WinnerFromSubmission(s Submission) *Winner {
	return &Winner{Name: s.Name, Email: s.Email, Photo: s.Photo, TaskInfo: s.TaskInfo}
}
