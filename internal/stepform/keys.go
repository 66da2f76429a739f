package stepform

import "github.com/gosimple/slug"

const keyPrefix = "stepform_"

// KeyForRoute derives the storage key for a route path, so each route resumes
// its own form: "/admin/students/new" becomes "stepform_admin-students-new".
// The result is safe as a file name and as a NATS KV key. Slugging folds case
// and punctuation, so "/admin/Students" and "/admin/students" (or "/a.b" and
// "/a-b") share one key; pass WithStorageKey when routes differ only that way.
func KeyForRoute(route string) string {
	s := slug.Make(route)
	if s == "" {
		s = "root"
	}
	return keyPrefix + s
}
