package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainaudit "roundcheck/internal/domain/audit"
	"roundcheck/internal/infrastructure/persistence/sqlite/model"
	"roundcheck/internal/infrastructure/persistence/sqlite/repository"
	"roundcheck/internal/infrastructure/persistence/sqlite/uow"
	"roundcheck/internal/ports"
)

var testNow = time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc  *Service
	repo ports.AuditRepository
	dept ports.Department
	now  time.Time
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "audit.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Department{}, &model.User{}, &model.Inspection{}, &model.Issue{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewAuditRepository(db)
	svc := NewService(repo, uow.NewUnitOfWork(db)).WithClock(func() time.Time { return testNow })

	dept, err := repo.CreateDepartment(context.Background(), "Electrical")
	if err != nil {
		t.Fatalf("create department: %v", err)
	}

	return &fixture{svc: svc, repo: repo, dept: dept, now: testNow}
}

func (f *fixture) startRound(t *testing.T, inspectorChatID int64) StartedInspection {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.EnsureUser(ctx, inspectorChatID, "inspector"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	started, err := f.svc.StartInspection(ctx, StartInspectionInput{
		DepartmentID:    f.dept.ID,
		InspectorChatID: inspectorChatID,
	})
	if err != nil {
		t.Fatalf("start inspection: %v", err)
	}
	return started
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	first, err := f.svc.EnsureUser(ctx, 100, "petrov")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	second, err := f.svc.EnsureUser(ctx, 100, "renamed")
	if err != nil {
		t.Fatalf("ensure user again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if second.Name != "petrov" {
		t.Errorf("name = %q, existing name must not be overwritten", second.Name)
	}
}

func TestStartInspectionRejectsSecondOpenRound(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	f.startRound(t, 100)

	_, err := f.svc.StartInspection(ctx, StartInspectionInput{
		DepartmentID:    f.dept.ID,
		InspectorChatID: 100,
	})
	if !errors.Is(err, domainaudit.ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}
}

func TestInspectionLifecycle(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	started := f.startRound(t, 100)
	if started.Inspection.Status != "open" {
		t.Fatalf("status = %q, want open", started.Inspection.Status)
	}
	wantDate := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	if !started.Inspection.Date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", started.Inspection.Date, wantDate)
	}

	// One issue with an inline caption, one whose comment arrives later.
	withCaption, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID,
		PhotoRef:     "photo-a",
		Caption:      "loose wire",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}
	bare, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID,
		PhotoRef:     "photo-b",
	})
	if err != nil {
		t.Fatalf("log bare issue: %v", err)
	}
	if bare.Comment != nil {
		t.Fatalf("bare comment = %v, want nil", *bare.Comment)
	}
	if err := f.svc.AttachComment(ctx, bare.ID, "broken socket"); err != nil {
		t.Fatalf("attach comment: %v", err)
	}

	// Both comment paths land in the same stored field.
	gotBare, err := f.repo.GetIssue(ctx, bare.ID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if gotBare.Comment == nil || *gotBare.Comment != "broken socket" {
		t.Errorf("follow-up comment = %v", gotBare.Comment)
	}
	if withCaption.Comment == nil || *withCaption.Comment != "loose wire" {
		t.Errorf("caption comment = %v", withCaption.Comment)
	}

	completed, err := f.svc.CompleteInspection(ctx, started.Inspection.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.AlreadyCompleted {
		t.Error("first completion marked AlreadyCompleted")
	}
	if completed.Summary.IssueCount != 2 {
		t.Errorf("issue count = %d, want 2", completed.Summary.IssueCount)
	}
	if completed.Summary.Department != "Electrical" {
		t.Errorf("department = %q", completed.Summary.Department)
	}
	wantDeadline := wantDate.Add(7 * 24 * time.Hour)
	if !completed.Summary.RemediateBy.Equal(wantDeadline) {
		t.Errorf("remediate by = %v, want %v", completed.Summary.RemediateBy, wantDeadline)
	}

	again, err := f.svc.CompleteInspection(ctx, started.Inspection.ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if !again.AlreadyCompleted {
		t.Error("second completion not marked AlreadyCompleted")
	}

	// A closed round accepts no more issues.
	_, err = f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID,
		PhotoRef:     "photo-c",
	})
	if !errors.Is(err, domainaudit.ErrInvalidState) {
		t.Errorf("log after complete error = %v, want ErrInvalidState", err)
	}
}

func TestAttachCommentGuards(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	started := f.startRound(t, 100)
	issue, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID,
		PhotoRef:     "photo-a",
		Caption:      "already described",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}

	if err := f.svc.AttachComment(ctx, issue.ID, "second text"); !errors.Is(err, domainaudit.ErrCommentAlreadySet) {
		t.Errorf("double comment error = %v, want ErrCommentAlreadySet", err)
	}
	if err := f.svc.AttachComment(ctx, 9999, "text"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing issue error = %v, want ErrNotFound", err)
	}
}

func TestSubmitFixRequiresEvidence(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.SubmitFix(context.Background(), SubmitFixInput{IssueID: 1, SubmitterChatID: 200})
	if !errors.Is(err, domainaudit.ErrEvidenceRequired) {
		t.Fatalf("error = %v, want ErrEvidenceRequired", err)
	}

	blank := "   "
	_, err = f.svc.SubmitFix(context.Background(), SubmitFixInput{
		IssueID: 1, Comment: &blank, SubmitterChatID: 200,
	})
	if !errors.Is(err, domainaudit.ErrEvidenceRequired) {
		t.Fatalf("blank comment error = %v, want ErrEvidenceRequired", err)
	}
}

func TestFixAndReviewCycle(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	started := f.startRound(t, 100)
	issue, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID,
		PhotoRef:     "before",
		Caption:      "loose wire",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}

	fixPhoto := "after"
	submission, err := f.svc.SubmitFix(ctx, SubmitFixInput{
		IssueID:         issue.ID,
		PhotoRef:        &fixPhoto,
		SubmitterChatID: 200,
		SubmitterName:   "staff",
	})
	if err != nil {
		t.Fatalf("submit fix: %v", err)
	}
	if submission.DepartmentName != "Electrical" || submission.OriginalComment != "loose wire" {
		t.Errorf("submission = %+v", submission)
	}

	// Return clears the evidence and reopens.
	returned, err := f.svc.ReturnIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("return issue: %v", err)
	}
	if returned.Outcome != ReviewApplied {
		t.Fatalf("return outcome = %v, want applied", returned.Outcome)
	}
	if returned.SubmitterChatID == nil || *returned.SubmitterChatID != 200 {
		t.Errorf("submitter = %v, want 200", returned.SubmitterChatID)
	}
	reopened, err := f.repo.GetIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("get issue: %v", err)
	}
	if reopened.Status != "open" || reopened.FixPhotoRef != nil || reopened.FixedByChatID != nil {
		t.Errorf("after return = %+v", reopened)
	}

	// Second return loses the race quietly.
	raced, err := f.svc.ReturnIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("second return: %v", err)
	}
	if raced.Outcome != ReviewAlreadyProcessed {
		t.Errorf("raced outcome = %v, want already processed", raced.Outcome)
	}

	// Comment-only resubmission, then approval.
	fixComment := "tightened"
	if _, err := f.svc.SubmitFix(ctx, SubmitFixInput{
		IssueID:         issue.ID,
		Comment:         &fixComment,
		SubmitterChatID: 200,
	}); err != nil {
		t.Fatalf("resubmit fix: %v", err)
	}

	outcome, err := f.svc.ApproveIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if outcome != ReviewApplied {
		t.Fatalf("approve outcome = %v, want applied", outcome)
	}

	// The other admin's click after approval is a no-op, not an error.
	outcome, err = f.svc.ApproveIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("approve again: %v", err)
	}
	if outcome != ReviewAlreadyProcessed {
		t.Errorf("second approve outcome = %v", outcome)
	}

	// Fixed is terminal: no further fix submissions.
	_, err = f.svc.SubmitFix(ctx, SubmitFixInput{
		IssueID:         issue.ID,
		Comment:         &fixComment,
		SubmitterChatID: 200,
	})
	if !errors.Is(err, domainaudit.ErrInvalidState) {
		t.Errorf("fix on fixed error = %v, want ErrInvalidState", err)
	}
}

func TestApproveMissingIssueIsAlreadyProcessed(t *testing.T) {
	f := setupService(t)

	outcome, err := f.svc.ApproveIssue(context.Background(), 424242)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if outcome != ReviewAlreadyProcessed {
		t.Errorf("outcome = %v, want already processed", outcome)
	}
}

func TestListRemediableIssues(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	started := f.startRound(t, 100)
	open, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID, PhotoRef: "a", Caption: "first",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}
	pendingIssue, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID, PhotoRef: "b", Caption: "second",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}
	fixedIssue, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID, PhotoRef: "c", Caption: "third",
	})
	if err != nil {
		t.Fatalf("log issue: %v", err)
	}

	comment := "done"
	if _, err := f.svc.SubmitFix(ctx, SubmitFixInput{IssueID: pendingIssue.ID, Comment: &comment, SubmitterChatID: 200}); err != nil {
		t.Fatalf("submit fix: %v", err)
	}
	if _, err := f.svc.SubmitFix(ctx, SubmitFixInput{IssueID: fixedIssue.ID, Comment: &comment, SubmitterChatID: 200}); err != nil {
		t.Fatalf("submit fix: %v", err)
	}
	if _, err := f.svc.ApproveIssue(ctx, fixedIssue.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	listing, err := f.svc.ListRemediableIssues(ctx, f.dept.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listing.Department.Name != "Electrical" {
		t.Errorf("department = %q", listing.Department.Name)
	}
	if len(listing.Issues) != 2 {
		t.Fatalf("len = %d, want 2 (fixed issue excluded)", len(listing.Issues))
	}
	if listing.Issues[0].ID != open.ID || listing.Issues[1].ID != pendingIssue.ID {
		t.Errorf("order = %d, %d", listing.Issues[0].ID, listing.Issues[1].ID)
	}
}

func TestHistoryStats(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	started := f.startRound(t, 100)
	if _, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: started.Inspection.ID, PhotoRef: "a", Caption: "x",
	}); err != nil {
		t.Fatalf("log issue: %v", err)
	}
	if _, err := f.svc.CompleteInspection(ctx, started.Inspection.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	global, err := f.svc.History(ctx, nil)
	if err != nil {
		t.Fatalf("global history: %v", err)
	}
	if global.DepartmentName != "" {
		t.Errorf("global department = %q, want empty", global.DepartmentName)
	}
	if global.Inspections.Total != 1 || global.Inspections.Completed != 1 || global.ActiveInspections() != 0 {
		t.Errorf("inspections = %+v", global.Inspections)
	}
	if global.Issues.Total != 1 || global.Issues.InWork != 1 {
		t.Errorf("issues = %+v", global.Issues)
	}

	scoped, err := f.svc.History(ctx, &f.dept.ID)
	if err != nil {
		t.Fatalf("scoped history: %v", err)
	}
	if scoped.DepartmentName != "Electrical" {
		t.Errorf("scoped department = %q", scoped.DepartmentName)
	}

	missing := uint64(9999)
	if _, err := f.svc.History(ctx, &missing); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing department error = %v", err)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	// An old round beyond retention and a recent one inside it.
	oldDate := testNow.AddDate(0, 0, -30)
	user, err := f.svc.EnsureUser(ctx, 100, "inspector")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	oldRound, err := f.repo.CreateInspection(ctx, ports.Inspection{
		DepartmentID: f.dept.ID,
		InspectorID:  user.ID,
		Date:         oldDate,
		Status:       "completed",
		CreatedAt:    oldDate,
	})
	if err != nil {
		t.Fatalf("create old round: %v", err)
	}
	if _, err := f.repo.CreateIssue(ctx, ports.Issue{
		InspectionID: oldRound.ID,
		DepartmentID: f.dept.ID,
		PhotoRef:     "p",
		Status:       "open",
		CreatedAt:    oldDate,
	}); err != nil {
		t.Fatalf("create old issue: %v", err)
	}

	recent := f.startRound(t, 101)
	if _, err := f.svc.LogIssue(ctx, LogIssueInput{
		InspectionID: recent.Inspection.ID, PhotoRef: "q", Caption: "fresh",
	}); err != nil {
		t.Fatalf("log recent issue: %v", err)
	}

	result, err := f.svc.PurgeOlderThan(ctx, 15)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if result.Inspections != 1 || result.Issues != 1 {
		t.Fatalf("purged = %+v, want 1/1", result)
	}

	// Cascade: old round and its issue are gone, the recent round stays.
	if _, err := f.repo.GetInspection(ctx, oldRound.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("old round error = %v, want ErrNotFound", err)
	}
	if _, err := f.repo.GetInspection(ctx, recent.Inspection.ID); err != nil {
		t.Errorf("recent round error = %v", err)
	}

	// Immediately re-running removes nothing.
	again, err := f.svc.PurgeOlderThan(ctx, 15)
	if err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if again.Inspections != 0 || again.Issues != 0 {
		t.Errorf("second purge = %+v, want 0/0", again)
	}

	if _, err := f.svc.PurgeOlderThan(ctx, 0); err == nil {
		t.Error("zero horizon should be rejected")
	}
}

func TestClearHistory(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	user, err := f.svc.EnsureUser(ctx, 100, "inspector")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	dates := []time.Time{
		testNow.AddDate(0, 0, -60), // outside both windows
		testNow.AddDate(0, 0, -20), // inside 30, outside 7
		testNow.AddDate(0, 0, -2),  // inside 7
	}
	for _, date := range dates {
		if _, err := f.repo.CreateInspection(ctx, ports.Inspection{
			DepartmentID: f.dept.ID,
			InspectorID:  user.ID,
			Date:         date,
			Status:       "completed",
			CreatedAt:    date,
		}); err != nil {
			t.Fatalf("create inspection: %v", err)
		}
	}

	result, err := f.svc.ClearHistory(ctx, ports.ClearLast7Days)
	if err != nil {
		t.Fatalf("clear 7: %v", err)
	}
	if result.Inspections != 1 {
		t.Fatalf("clear 7 removed %d, want 1", result.Inspections)
	}

	result, err = f.svc.ClearHistory(ctx, ports.ClearLast30Days)
	if err != nil {
		t.Fatalf("clear 30: %v", err)
	}
	if result.Inspections != 1 {
		t.Fatalf("clear 30 removed %d, want 1", result.Inspections)
	}

	result, err = f.svc.ClearHistory(ctx, ports.ClearAll)
	if err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if result.Inspections != 1 {
		t.Fatalf("clear all removed %d, want 1", result.Inspections)
	}

	if _, err := f.svc.ClearHistory(ctx, ports.ClearPeriod("90")); err == nil {
		t.Error("unknown period should be rejected")
	}
}
