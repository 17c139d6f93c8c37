package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/worklane/worklane/internal/domain"
)

// Attachment is an opaque blob reference carried on a comment. Storage and
// rendering are handled by the attachment collaborator.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// Comment is one entry in a task's comment forest. ParentID is empty for
// top-level comments; when set it must reference a comment on the same task.
type Comment struct {
	ID          string       `json:"id"`
	TaskID      string       `json:"task_id"`
	AuthorID    string       `json:"author_id"`
	AuthorName  string       `json:"author_name,omitempty"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CommentCreate holds the fields needed to add a comment to a task.
type CommentCreate struct {
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
}

// Validate checks that the comment has content.
func (c *CommentCreate) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("content is required: %w", domain.ErrValidation)
	}
	return nil
}
