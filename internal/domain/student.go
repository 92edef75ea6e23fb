package domain

import "strings"

// Student is one row of a student directory search result.
type Student struct {
	FirstName   string
	LastName    string
	Email       string
	ProfileURL  string
	ScheduleURL string
}

func (s Student) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ListDetail is the contextual information looked up for the list a queued
// student is waiting on. All fields are best effort.
type ListDetail struct {
	ListID         string
	Course         string
	OtherTeachers  []string
	RecentActivity string
	StudentName    string
	Location       string
}
