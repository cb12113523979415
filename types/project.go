package types

import "time"

// Project represents a project container in the remote data service
type Project struct {
	ID    string
	Label string
}

// Subject represents a subject container. Label may be unpadded ("123" vs "000123").
type Subject struct {
	ID        string
	Label     string
	Code      string
	ProjectID string
}

// Session represents one imaging visit of a subject
type Session struct {
	ID        string
	Label     string
	Timestamp *time.Time
	SubjectID string
	ProjectID string
}
