package ports

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("record not found")

var (
	ErrDepartmentNotFound = fmt.Errorf("department: %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user: %w", ErrNotFound)
	ErrInspectionNotFound = fmt.Errorf("inspection: %w", ErrNotFound)
	ErrIssueNotFound      = fmt.Errorf("issue: %w", ErrNotFound)
)

type Department struct {
	ID   uint64
	Name string
}

type User struct {
	ID     uint64
	ChatID int64
	Name   string
}

type Inspection struct {
	ID           uint64
	DepartmentID uint64
	InspectorID  uint64
	Date         time.Time
	Status       string
	CreatedAt    time.Time
}

type Issue struct {
	ID            uint64
	InspectionID  uint64
	DepartmentID  uint64
	PhotoRef      string
	Comment       *string
	Status        string
	CreatedAt     time.Time
	FixedAt       *time.Time
	FixPhotoRef   *string
	FixedByChatID *int64
}

// IssueFixUpdate applies remediation evidence (or clears it, when the
// pointer fields are nil) together with the status it implies.
type IssueFixUpdate struct {
	Status        string
	FixPhotoRef   *string
	FixedAt       *time.Time
	FixedByChatID *int64
}

type IssueFilter struct {
	DepartmentID uint64
	Statuses     []string
}

// InspectionDateRange selects inspections by their round date. Nil bounds
// are open-ended; the zero value matches everything.
type InspectionDateRange struct {
	From *time.Time
	To   *time.Time
}

type InspectionCounts struct {
	Total     int64
	Completed int64
}

type IssueCounts struct {
	Total  int64
	InWork int64
	Fixed  int64
}

// AuditRepository is the entity store: pure data access, no policy.
// Write methods participate in an ambient UnitOfWork transaction when one
// is present in the context.
type AuditRepository interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id uint64) (Department, error)
	CountDepartments(ctx context.Context) (int64, error)
	CreateDepartment(ctx context.Context, name string) (Department, error)

	GetUser(ctx context.Context, id uint64) (User, error)
	GetUserByChatID(ctx context.Context, chatID int64) (User, error)
	CreateUser(ctx context.Context, chatID int64, name string) (User, error)

	CreateInspection(ctx context.Context, inspection Inspection) (Inspection, error)
	GetInspection(ctx context.Context, id uint64) (Inspection, error)
	FindOpenInspection(ctx context.Context, inspectorID uint64) (Inspection, error)
	SetInspectionStatus(ctx context.Context, id uint64, status string) error
	InspectionCounts(ctx context.Context, departmentID *uint64) (InspectionCounts, error)

	CreateIssue(ctx context.Context, issue Issue) (Issue, error)
	GetIssue(ctx context.Context, id uint64) (Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]Issue, error)
	CountIssuesByInspection(ctx context.Context, inspectionID uint64) (int64, error)
	SetIssueComment(ctx context.Context, id uint64, comment string) error
	SetIssueStatus(ctx context.Context, id uint64, status string) error
	ApplyIssueFix(ctx context.Context, id uint64, update IssueFixUpdate) error
	IssueCounts(ctx context.Context, departmentID *uint64) (IssueCounts, error)

	FindInspectionIDsByDate(ctx context.Context, dateRange InspectionDateRange) ([]uint64, error)
	DeleteIssuesByInspectionIDs(ctx context.Context, inspectionIDs []uint64) (int64, error)
	DeleteInspectionsByIDs(ctx context.Context, inspectionIDs []uint64) (int64, error)
}
