package domain

// SubjectType differentiates token subjects.
type SubjectType string

const (
	SubjectTypeAdmin SubjectType = "ADMIN"
)
