package model

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "Active"
	JobStatusPaused JobStatus = "Paused"
	JobStatusClosed JobStatus = "Closed"
)

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeInternship JobType = "Internship"
)

// User is keyed by the auth provider's uid in the users collection.
// Student and admin profiles share one record; role-specific fields
// stay empty for the other role.
type User struct {
	UID           string   `json:"uid"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"displayName"`
	PhotoURL      string   `json:"photoURL,omitempty"`
	Role          Role     `json:"role"`
	PhoneNumber   string   `json:"phoneNumber,omitempty"`
	Address       string   `json:"address,omitempty"`
	CGPA          string   `json:"cgpa,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	ResumeText    string   `json:"resumeText,omitempty"`
	AppliedJobIDs []string `json:"appliedJobIds"`
	CompanyName   string   `json:"companyName,omitempty"`
	Designation   string   `json:"designation,omitempty"`
}

type Job struct {
	ID           string    `json:"id,omitempty"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Status       JobStatus `json:"status"`
	Applications int       `json:"applications"`
	Location     string    `json:"location"`
	Type         JobType   `json:"type"`
}

// Application denormalizes the student name and job title/company at the
// moment of applying; they are allowed to go stale afterwards.
type Application struct {
	ID          string    `json:"id,omitempty"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	JobID       string    `json:"jobId"`
	JobTitle    string    `json:"jobTitle"`
	CompanyName string    `json:"companyName"`
	AppliedAt   time.Time `json:"appliedAt"`
}

type Company struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	JobsPosted int    `json:"jobsPosted"`
	Industry   string `json:"industry"`
}

type EventType string

const (
	EventTypeFair     EventType = "Fair"
	EventTypeWorkshop EventType = "Workshop"
	EventTypeSession  EventType = "Session"
)

type UpcomingEvent struct {
	ID    string    `json:"id,omitempty"`
	Title string    `json:"title"`
	Date  string    `json:"date"`
	Type  EventType `json:"type"`
}

type NewsItem struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	AIHint      string `json:"aiHint"`
}

type Notification struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
