package mail

import "errors"

var (
	ErrNoRecipient        = errors.New("mail: message must have at least one recipient")
	ErrNoSubject          = errors.New("mail: message must have a subject")
	ErrNoContent          = errors.New("mail: message must have a body")
	ErrNoTransport        = errors.New("mail: no transport configured")
	ErrNoQueue            = errors.New("mail: no queue configured")
	ErrNoViews            = errors.New("mail: no view factory configured")
	ErrNoMarkdown         = errors.New("mail: no markdown renderer configured")
	ErrTemplateNotFound   = errors.New("mail: template not found")
	ErrLayoutNotFound     = errors.New("mail: layout not found")
	ErrRenderFailed       = errors.New("mail: failed to render")
	ErrSendFailed         = errors.New("mail: failed to send")
	ErrInvalidFrontMatter = errors.New("mail: invalid front matter")
)
