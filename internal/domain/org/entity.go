package org

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeUniversity = "UNIVERSITY"
	TypeEnterprise = "ENTERPRISE"

	CourseDraft     = "DRAFT"
	CoursePublished = "PUBLISHED"
	CourseArchived  = "ARCHIVED"
)

func ValidType(t string) bool {
	return t == TypeUniversity || t == TypeEnterprise
}

func ValidCourseStatus(s string) bool {
	return s == CourseDraft || s == CoursePublished || s == CourseArchived
}

type Organization struct {
	ID          uuid.UUID
	Name        string
	Type        string
	Description string
	Website     string
	CreatedBy   uuid.UUID
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Course struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Capacity       int
	Enrolled       int
	Status         string
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Enrollment struct {
	CourseID   uuid.UUID
	UserID     uuid.UUID
	EnrolledAt time.Time
}
