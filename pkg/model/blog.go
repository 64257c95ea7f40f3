package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TopLevelParent is the parent id the backend uses for blogs without a parent.
const TopLevelParent = -1

// MaxNameLength bounds blog names accepted by the create/edit forms.
const MaxNameLength = 120

// BlogNode is a blog or sub-blog as returned by the backend.
type BlogNode struct {
	ID        int       `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	Featured  bool      `json:"featured" yaml:"featured"`
	ParentID  *int      `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
}

// IsTopLevel reports whether the blog has no parent.
func (b BlogNode) IsTopLevel() bool {
	return b.ParentID == nil || *b.ParentID == TopLevelParent
}

// Parent returns the parent id, or TopLevelParent for top-level blogs.
func (b BlogNode) Parent() int {
	if b.IsTopLevel() {
		return TopLevelParent
	}
	return *b.ParentID
}

// Clone creates a deep copy of the blog
func (b BlogNode) Clone() BlogNode {
	clone := b
	if b.ParentID != nil {
		v := *b.ParentID
		clone.ParentID = &v
	}
	return clone
}

// Validate checks if the blog data is logically valid
func (b *BlogNode) Validate() error {
	if b.ID < 0 {
		return fmt.Errorf("blog ID cannot be negative: %d", b.ID)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("blog name cannot be empty")
	}
	if b.ParentID != nil && *b.ParentID == b.ID {
		return fmt.Errorf("blog %d cannot be its own parent", b.ID)
	}
	return nil
}

// BlogInput carries the editable fields of a blog for create and update requests.
type BlogInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Featured bool   `json:"featured"`
	ParentID *int   `json:"parentId,omitempty" validate:"omitempty,min=0"`
}

var validate = validator.New()

// Validate checks the input against its struct tags and returns readable messages.
func (in BlogInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateName validates a single name value the same way BlogInput does.
func ValidateName(name string) error {
	if err := validate.Var(strings.TrimSpace(name), fmt.Sprintf("required,max=%d", MaxNameLength)); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%s", fieldMessage("name", verrs[0]))
		}
		return err
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldMessage(strings.ToLower(e.Field()), e))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// IntPtr is a small helper for optional ids.
func IntPtr(v int) *int {
	return &v
}
