package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/validation"
)

var (
	ErrUnknownField = errors.New("unknown form field")
	// ErrSubjectGone means the record being edited left the store before submit.
	ErrSubjectGone = errors.New("edited todo no longer stored")
)

// State says what a submit will do with the draft.
type State int

const (
	// StateEmpty holds a fresh draft that will be added on submit.
	StateEmpty State = iota
	// StateEditing holds a copy of a stored record that will replace it on submit.
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Store is the part of the repository a submit writes to.
type Store interface {
	Add(draft domain.Draft) domain.Todo
	Update(todo domain.Todo) bool
}

// Controller binds one draft to the schema and to the store. It is not
// safe for concurrent use; callers serialize events.
type Controller struct {
	schema *validation.Schema
	store  Store
	now    func() time.Time

	state     State
	subjectID string
	values    validation.Values
	touched   map[string]bool
	errs      validation.Errors
}

// NewController creates a controller in StateEmpty. now defaults to time.Now.
func NewController(schema *validation.Schema, store Store, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	c := &Controller{schema: schema, store: store, now: now}
	c.reset()
	return c
}

// Open seeds the draft: defaults when subject is nil, a copy of the subject otherwise.
func (c *Controller) Open(subject *domain.Todo) {
	c.reset()
	if subject == nil {
		return
	}
	c.state = StateEditing
	c.subjectID = subject.ID
	c.values = validation.ValuesFromDraft(subject.Draft())
	c.revalidate()
}

// SetValues replaces the whole draft, as a browser form post does, and
// marks the given fields touched.
func (c *Controller) SetValues(values validation.Values, touched ...string) error {
	for _, field := range touched {
		if !slices.Contains(validation.Fields, field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}
	values.Hobbies = slices.Clone(values.Hobbies)
	c.values = values
	for _, field := range touched {
		c.touched[field] = true
	}
	c.revalidate()
	return nil
}

// Update replaces the draft and marks touched every field whose value changed.
func (c *Controller) Update(values validation.Values) {
	touched := changedFields(c.values, values)
	_ = c.SetValues(values, touched...)
}

// Change sets a single field. Hobbies take every value; other fields take the first.
func (c *Controller) Change(field string, value ...string) error {
	first := ""
	if len(value) > 0 {
		first = value[0]
	}
	switch field {
	case validation.FieldUserName:
		c.values.UserName = first
	case validation.FieldGender:
		c.values.Gender = first
	case validation.FieldHobbies:
		c.values.Hobbies = slices.Clone(value)
	case validation.FieldAge:
		c.values.Age = first
	case validation.FieldDate:
		c.values.Date = first
	case validation.FieldTaskName:
		c.values.TaskName = first
	case validation.FieldStatus:
		c.values.Status = first
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.touched[field] = true
	c.revalidate()
	return nil
}

// Touch marks a field as visited without changing it.
func (c *Controller) Touch(field string) error {
	if !slices.Contains(validation.Fields, field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.touched[field] = true
	return nil
}

// Submit validates the whole draft and, when it is valid, writes it to the
// store as one add or one update, then resets. ok is false while any field
// fails; every field is then touched so all errors show. An edit whose
// subject has vanished resets too and reports ErrSubjectGone.
func (c *Controller) Submit(ctx context.Context) (todo domain.Todo, ok bool, err error) {
	for _, field := range validation.Fields {
		c.touched[field] = true
	}
	draft, errs := c.schema.Validate(c.validationContext(ctx), c.values)
	c.errs = errs
	if !errs.Valid() {
		return domain.Todo{}, false, nil
	}

	switch c.state {
	case StateEditing:
		todo = draft.WithID(c.subjectID)
		if !c.store.Update(todo) {
			c.reset()
			return todo, false, fmt.Errorf("update %q: %w", todo.ID, ErrSubjectGone)
		}
	default:
		todo = c.store.Add(draft)
	}
	c.reset()
	return todo, true, nil
}

// Cancel drops the draft without touching the store.
func (c *Controller) Cancel() {
	c.reset()
}

func (c *Controller) State() State { return c.state }

// SubjectID is the id being edited, empty in StateEmpty.
func (c *Controller) SubjectID() string { return c.subjectID }

func (c *Controller) Values() validation.Values {
	v := c.values
	v.Hobbies = slices.Clone(v.Hobbies)
	return v
}

// Errors returns every current validation failure.
func (c *Controller) Errors() validation.Errors {
	out := make(validation.Errors, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// VisibleErrors returns the failures of touched fields only.
func (c *Controller) VisibleErrors() validation.Errors {
	out := validation.Errors{}
	for k, v := range c.errs {
		if c.touched[k] {
			out[k] = v
		}
	}
	return out
}

// MinDate is the earliest selectable date, zero when any date is allowed.
func (c *Controller) MinDate() time.Time {
	if c.state == StateEditing {
		return time.Time{}
	}
	return domain.DateOnly(c.now())
}

func (c *Controller) reset() {
	rules := c.schema.Rules()
	c.state = StateEmpty
	c.subjectID = ""
	c.values = validation.Values{
		Age:  strconv.Itoa(rules.AgeMin),
		Date: c.now().Format(domain.DateLayout),
	}
	c.touched = map[string]bool{}
	c.revalidate()
}

func (c *Controller) revalidate() {
	_, c.errs = c.schema.Validate(c.validationContext(context.Background()), c.values)
}

func (c *Controller) validationContext(ctx context.Context) context.Context {
	if c.state == StateEmpty {
		return validation.WithToday(ctx, c.now())
	}
	return ctx
}

func changedFields(old, cur validation.Values) []string {
	var out []string
	add := func(field string, changed bool) {
		if changed {
			out = append(out, field)
		}
	}
	add(validation.FieldUserName, old.UserName != cur.UserName)
	add(validation.FieldGender, old.Gender != cur.Gender)
	add(validation.FieldHobbies, !slices.Equal(old.Hobbies, cur.Hobbies))
	add(validation.FieldAge, old.Age != cur.Age)
	add(validation.FieldDate, old.Date != cur.Date)
	add(validation.FieldTaskName, old.TaskName != cur.TaskName)
	add(validation.FieldStatus, old.Status != cur.Status)
	return out
}
