// Package modal tracks which dialog is open and which record it is about.
//
// The form dialog and the delete confirmation share one State value, so a
// subject can only ever belong to one of them.
package modal

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/form"
)

var (
	ErrNotFound = errors.New("todo not found")
	ErrNotOpen  = errors.New("dialog not open")
)

// Kind names the open dialog.
type Kind int

const (
	KindNone Kind = iota
	KindForm
	KindConfirmDelete
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindForm:
		return "form"
	case KindConfirmDelete:
		return "confirm-delete"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is {none | form(subject?) | confirm-delete(subject)}.
// A form with a nil subject creates; with a subject it edits.
type State struct {
	kind    Kind
	subject *domain.Todo
}

func (s State) Kind() Kind { return s.kind }

// Subject returns a copy of the record the open dialog is about.
func (s State) Subject() (domain.Todo, bool) {
	if s.subject == nil {
		return domain.Todo{}, false
	}
	return s.subject.Clone(), true
}

func (s State) FormOpen() bool { return s.kind == KindForm }
func (s State) DeleteOpen() bool { return s.kind == KindConfirmDelete }
func (s State) Editing() bool { return s.kind == KindForm && s.subject != nil }

func (s State) String() string {
	if s.subject == nil {
		return s.kind.String()
	}
	return s.kind.String() + "(" + s.subject.ID + ")"
}

// Store is what the coordinator needs from the repository.
type Store interface {
	form.Store
	FindByID(id string) (domain.Todo, bool)
	Remove(id string) bool
}

// Coordinator drives the dialogs. It is not safe for concurrent use.
type Coordinator struct {
	store Store
	form  *form.Controller
	state State
}

// NewCoordinator creates a coordinator with no dialog open.
func NewCoordinator(store Store, controller *form.Controller) *Coordinator {
	return &Coordinator{store: store, form: controller}
}

func (c *Coordinator) State() State { return c.state }

func (c *Coordinator) Form() *form.Controller { return c.form }

// OpenCreate shows an empty form, discarding whatever was open.
func (c *Coordinator) OpenCreate() {
	c.form.Open(nil)
	c.state = State{kind: KindForm}
}

// OpenEdit shows the form seeded with the record id.
func (c *Coordinator) OpenEdit(id string) error {
	todo, ok := c.store.FindByID(id)
	if !ok {
		return fmt.Errorf("edit %q: %w", id, ErrNotFound)
	}
	c.form.Open(&todo)
	c.state = State{kind: KindForm, subject: &todo}
	return nil
}

// OpenDelete asks for confirmation before removing the record id.
func (c *Coordinator) OpenDelete(id string) error {
	todo, ok := c.store.FindByID(id)
	if !ok {
		return fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}
	c.form.Cancel()
	c.state = State{kind: KindConfirmDelete, subject: &todo}
	return nil
}

// Submit submits the open form. On success the dialog closes and the
// stored record is returned; on validation failure it stays open. When the
// edited record vanished meanwhile the dialog closes and ErrNotFound is
// returned.
func (c *Coordinator) Submit(ctx context.Context) (domain.Todo, bool, error) {
	if !c.state.FormOpen() {
		return domain.Todo{}, false, ErrNotOpen
	}
	todo, ok, err := c.form.Submit(ctx)
	if errors.Is(err, form.ErrSubjectGone) {
		c.state = State{}
		return todo, false, fmt.Errorf("update %q: %w", todo.ID, ErrNotFound)
	}
	if err != nil {
		return domain.Todo{}, false, err
	}
	if ok {
		c.state = State{}
	}
	return todo, ok, nil
}

// ConfirmDelete removes the subject and closes the dialog. removed is false
// when the record had already disappeared.
func (c *Coordinator) ConfirmDelete() (subject domain.Todo, removed bool, err error) {
	if !c.state.DeleteOpen() {
		return domain.Todo{}, false, ErrNotOpen
	}
	subject = c.state.subject.Clone()
	removed = c.store.Remove(subject.ID)
	c.state = State{}
	return subject, removed, nil
}

// Cancel closes any dialog without touching the store.
func (c *Coordinator) Cancel() {
	c.form.Cancel()
	c.state = State{}
}
