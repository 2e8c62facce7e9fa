package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"roundcheck/internal/errs"
	"roundcheck/internal/infrastructure/persistence/sqlite/model"
	"roundcheck/internal/ports"
)

// AuditRepository implements ports.AuditRepository over gorm/sqlite.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// --- departments ---

func (r *AuditRepository) ListDepartments(ctx context.Context) ([]ports.Department, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Department
	if err := db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query departments")
	}

	items := make([]ports.Department, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Department{ID: row.ID, Name: row.Name})
	}
	return items, nil
}

func (r *AuditRepository) GetDepartment(ctx context.Context, id uint64) (ports.Department, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Department{}, err
	}

	var row model.Department
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Department{}, ports.ErrDepartmentNotFound
		}
		return ports.Department{}, errs.Wrap(err, "query department")
	}
	return ports.Department{ID: row.ID, Name: row.Name}, nil
}

func (r *AuditRepository) CountDepartments(ctx context.Context) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Department{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count departments")
	}
	return count, nil
}

func (r *AuditRepository) CreateDepartment(ctx context.Context, name string) (ports.Department, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Department{}, err
	}

	row := model.Department{Name: name}
	if err := db.Create(&row).Error; err != nil {
		return ports.Department{}, errs.Wrap(err, "create department")
	}
	return ports.Department{ID: row.ID, Name: row.Name}, nil
}

// --- users ---

func (r *AuditRepository) GetUser(ctx context.Context, id uint64) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user")
	}
	return mapUser(row), nil
}

func (r *AuditRepository) GetUserByChatID(ctx context.Context, chatID int64) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	var row model.User
	if err := db.First(&row, "chat_id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user by chat id")
	}
	return mapUser(row), nil
}

func (r *AuditRepository) CreateUser(ctx context.Context, chatID int64, name string) (ports.User, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.User{}, err
	}

	row := model.User{ChatID: chatID, Name: name}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, errs.Wrap(err, "create user")
	}
	return mapUser(row), nil
}

// --- inspections ---

func (r *AuditRepository) CreateInspection(ctx context.Context, inspection ports.Inspection) (ports.Inspection, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Inspection{}, err
	}

	row := model.Inspection{
		DepartmentID: inspection.DepartmentID,
		InspectorID:  inspection.InspectorID,
		Date:         inspection.Date,
		Status:       inspection.Status,
		CreatedAt:    inspection.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Inspection{}, errs.Wrap(err, "create inspection")
	}
	return mapInspection(row), nil
}

func (r *AuditRepository) GetInspection(ctx context.Context, id uint64) (ports.Inspection, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Inspection{}, err
	}

	var row model.Inspection
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Inspection{}, ports.ErrInspectionNotFound
		}
		return ports.Inspection{}, errs.Wrap(err, "query inspection")
	}
	return mapInspection(row), nil
}

func (r *AuditRepository) FindOpenInspection(ctx context.Context, inspectorID uint64) (ports.Inspection, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Inspection{}, err
	}

	var row model.Inspection
	if err := db.
		Where("inspector_id = ? AND status = ?", inspectorID, "open").
		Order("id asc").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Inspection{}, ports.ErrInspectionNotFound
		}
		return ports.Inspection{}, errs.Wrap(err, "query open inspection")
	}
	return mapInspection(row), nil
}

func (r *AuditRepository) SetInspectionStatus(ctx context.Context, id uint64, status string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Inspection{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update inspection status")
	}
	if res.RowsAffected == 0 {
		return ports.ErrInspectionNotFound
	}
	return nil
}

func (r *AuditRepository) InspectionCounts(ctx context.Context, departmentID *uint64) (ports.InspectionCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.InspectionCounts{}, err
	}

	query := db.Model(&model.Inspection{})
	if departmentID != nil {
		query = query.Where("department_id = ?", *departmentID)
	}

	var counts ports.InspectionCounts
	if err := query.Count(&counts.Total).Error; err != nil {
		return ports.InspectionCounts{}, errs.Wrap(err, "count inspections")
	}

	completed := db.Model(&model.Inspection{}).Where("status = ?", "completed")
	if departmentID != nil {
		completed = completed.Where("department_id = ?", *departmentID)
	}
	if err := completed.Count(&counts.Completed).Error; err != nil {
		return ports.InspectionCounts{}, errs.Wrap(err, "count completed inspections")
	}
	return counts, nil
}

// --- issues ---

func (r *AuditRepository) CreateIssue(ctx context.Context, issue ports.Issue) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	row := model.Issue{
		InspectionID: issue.InspectionID,
		DepartmentID: issue.DepartmentID,
		PhotoRef:     issue.PhotoRef,
		Comment:      issue.Comment,
		Status:       issue.Status,
		CreatedAt:    issue.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Issue{}, errs.Wrap(err, "create issue")
	}
	return mapIssue(row), nil
}

func (r *AuditRepository) GetIssue(ctx context.Context, id uint64) (ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Issue{}, err
	}

	var row model.Issue
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Issue{}, ports.ErrIssueNotFound
		}
		return ports.Issue{}, errs.Wrap(err, "query issue")
	}
	return mapIssue(row), nil
}

func (r *AuditRepository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]ports.Issue, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{})
	if filter.DepartmentID != 0 {
		query = query.Where("department_id = ?", filter.DepartmentID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var rows []model.Issue
	if err := query.Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues")
	}

	items := make([]ports.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *AuditRepository) CountIssuesByInspection(ctx context.Context, inspectionID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Issue{}).Where("inspection_id = ?", inspectionID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count inspection issues")
	}
	return count, nil
}

func (r *AuditRepository) SetIssueComment(ctx context.Context, id uint64, comment string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Issue{}).Where("id = ?", id).Update("comment", comment)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update issue comment")
	}
	if res.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *AuditRepository) SetIssueStatus(ctx context.Context, id uint64, status string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Issue{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update issue status")
	}
	if res.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *AuditRepository) ApplyIssueFix(ctx context.Context, id uint64, update ports.IssueFixUpdate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.Issue{}).Where("id = ?", id).Updates(map[string]any{
		"status":           update.Status,
		"fix_photo_ref":    update.FixPhotoRef,
		"fixed_at":         update.FixedAt,
		"fixed_by_chat_id": update.FixedByChatID,
	})
	if res.Error != nil {
		return errs.Wrap(res.Error, "apply issue fix")
	}
	if res.RowsAffected == 0 {
		return ports.ErrIssueNotFound
	}
	return nil
}

func (r *AuditRepository) IssueCounts(ctx context.Context, departmentID *uint64) (ports.IssueCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueCounts{}, err
	}

	scoped := func() *gorm.DB {
		q := db.Model(&model.Issue{})
		if departmentID != nil {
			q = q.Where("department_id = ?", *departmentID)
		}
		return q
	}

	var counts ports.IssueCounts
	if err := scoped().Count(&counts.Total).Error; err != nil {
		return ports.IssueCounts{}, errs.Wrap(err, "count issues")
	}
	if err := scoped().Where("status IN ?", []string{"open", "pending"}).Count(&counts.InWork).Error; err != nil {
		return ports.IssueCounts{}, errs.Wrap(err, "count in-work issues")
	}
	if err := scoped().Where("status = ?", "fixed").Count(&counts.Fixed).Error; err != nil {
		return ports.IssueCounts{}, errs.Wrap(err, "count fixed issues")
	}
	return counts, nil
}

// --- retention ---

func (r *AuditRepository) FindInspectionIDsByDate(ctx context.Context, dateRange ports.InspectionDateRange) ([]uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Inspection{}).Select("id")
	if dateRange.From != nil {
		query = query.Where("date >= ?", *dateRange.From)
	}
	if dateRange.To != nil {
		query = query.Where("date < ?", *dateRange.To)
	}

	var ids []uint64
	if err := query.Order("id asc").Find(&ids).Error; err != nil {
		return nil, errs.Wrap(err, "query inspection ids by date")
	}
	return ids, nil
}

func (r *AuditRepository) DeleteIssuesByInspectionIDs(ctx context.Context, inspectionIDs []uint64) (int64, error) {
	if len(inspectionIDs) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Where("inspection_id IN ?", inspectionIDs).Delete(&model.Issue{})
	if res.Error != nil {
		return 0, errs.Wrap(res.Error, "delete issues by inspection ids")
	}
	return res.RowsAffected, nil
}

func (r *AuditRepository) DeleteInspectionsByIDs(ctx context.Context, inspectionIDs []uint64) (int64, error) {
	if len(inspectionIDs) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Where("id IN ?", inspectionIDs).Delete(&model.Inspection{})
	if res.Error != nil {
		return 0, errs.Wrap(res.Error, "delete inspections by ids")
	}
	return res.RowsAffected, nil
}

// --- mapping ---

func mapUser(row model.User) ports.User {
	return ports.User{ID: row.ID, ChatID: row.ChatID, Name: row.Name}
}

func mapInspection(row model.Inspection) ports.Inspection {
	return ports.Inspection{
		ID:           row.ID,
		DepartmentID: row.DepartmentID,
		InspectorID:  row.InspectorID,
		Date:         row.Date,
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
	}
}

func mapIssue(row model.Issue) ports.Issue {
	return ports.Issue{
		ID:            row.ID,
		InspectionID:  row.InspectionID,
		DepartmentID:  row.DepartmentID,
		PhotoRef:      row.PhotoRef,
		Comment:       row.Comment,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt,
		FixedAt:       row.FixedAt,
		FixPhotoRef:   row.FixPhotoRef,
		FixedByChatID: row.FixedByChatID,
	}
}
