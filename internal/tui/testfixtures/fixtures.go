package testfixtures

import (
	"time"

	"github.com/mark3labs/stepform/internal/stepform"
)

// Fixed test values for consistent output
const (
	FixedKey   = "stepform_test"
	FixedRoute = "/admin/students/new"
)

var (
	FixedTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
)

// EnrolForm is a three step form touching every field type.
const EnrolForm = `
title: Enrol student
route: /admin/students/new
steps:
  - label: Student
    description: Who is joining.
    fields:
      - name: first_name
        label: First name
        rules: required
      - name: email
        type: email
  - label: Course
    fields:
      - name: course
        type: select
        options: [Piano, Violin]
        rules: required
      - name: lessons
        type: number
        default: 1
        rules: required,gte=1,lte=5
  - label: Documents
    fields:
      - name: photo
        type: file
      - name: secret
        type: password
        rules: omitempty,min=8
`

// SingleStepForm has one required field.
const SingleStepForm = `
title: Feedback
steps:
  - label: Comment
    fields:
      - name: comment
        rules: required
`

// SnapshotAt returns a snapshot resuming on step active with every earlier
// step completed.
func SnapshotAt(active int, data stepform.Data) stepform.Snapshot {
	completed := make([]int, 0, active)
	for i := range active {
		completed = append(completed, i)
	}
	return stepform.Snapshot{
		Version:        1,
		ID:             "fixture",
		SavedAt:        FixedTime,
		FormData:       data,
		ActiveStep:     active,
		CompletedSteps: completed,
	}
}
