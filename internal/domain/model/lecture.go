package model

import (
	"time"

	"edu-platform/internal/domain"

	"github.com/google/uuid"
)

type LectureKind string

const (
	LectureKindVideo LectureKind = "video"
	LectureKindPDF   LectureKind = "pdf"
	LectureKindExam  LectureKind = "exam"
)

// Lecture is one piece of content inside a package. Access is gated by an
// active entitlement for the owning package.
type Lecture struct {
	ID        string
	PackageID string
	Title     string
	Kind      LectureKind
	URL       string
	Position  int
	CreatedAt time.Time
}

func NewLecture(id, packageID, title string, kind LectureKind, url string, position int) (*Lecture, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if packageID == "" || title == "" || url == "" || position < 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch kind {
	case LectureKindVideo, LectureKindPDF, LectureKindExam:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &Lecture{
		ID:        id,
		PackageID: packageID,
		Title:     title,
		Kind:      kind,
		URL:       url,
		Position:  position,
		CreatedAt: time.Now(),
	}, nil
}
