package audit

import "errors"

var (
	ErrForbidden         = errors.New("operation requires admin rights")
	ErrInvalidState      = errors.New("transition not allowed from current status")
	ErrEvidenceRequired  = errors.New("fix needs a photo or a comment")
	ErrCommentAlreadySet = errors.New("issue already has a comment")
)
