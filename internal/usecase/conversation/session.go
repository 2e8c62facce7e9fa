package conversation

import "sync"

// Flow names which conversation a user is in the middle of.
type Flow string

const (
	FlowNone       Flow = "none"
	FlowInspecting Flow = "inspecting"
	FlowFixing     Flow = "fixing"
)

// session is one user's transient conversation state. It is not durable;
// only committed entities survive a restart. Access is serialized per user
// by the engine's shard workers, so the struct itself carries no lock.
type session struct {
	Flow Flow

	// inspecting
	InspectionID uint64
	DepartmentID uint64
	// Set while the last logged issue still waits for its comment; the
	// next plain text from this user binds to exactly this issue.
	AwaitingCommentIssueID uint64

	// fixing
	// Zero until the user picks an issue (the selecting-issue step).
	FixIssueID uint64
	// Set when a fix photo arrived without a caption and the comment is
	// still outstanding.
	FixPhotoRef string

	// Transient message refs to delete once the current step resolves.
	Cleanup []int64
}

// sessions is the per-user session registry. The map lock only guards the
// map; per-user ordering is the shard workers' job.
type sessions struct {
	mu     sync.Mutex
	byUser map[int64]*session
}

func newSessions() *sessions {
	return &sessions{byUser: make(map[int64]*session)}
}

// get returns the user's session or nil. No session means idle: events are
// ignored, which keeps the machine safe against duplicate or out-of-order
// transport deliveries.
func (s *sessions) get(userChatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byUser[userChatID]
}

// replace installs a fresh session, implicitly abandoning whatever flow the
// user was in before.
func (s *sessions) replace(userChatID int64, next *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next == nil {
		delete(s.byUser, userChatID)
		return
	}
	s.byUser[userChatID] = next
}

func (s *sessions) clear(userChatID int64) {
	s.replace(userChatID, nil)
}
