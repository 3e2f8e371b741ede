package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/repository"
	"github.com/Tomlord1122/todo-form/internal/validation"
)

var fixedNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newTestController(t *testing.T) (*Controller, repository.TodoRepository) {
	t.Helper()
	schema, err := validation.NewSchema(validation.Rules{
		AgeMin:   18,
		AgeMax:   100,
		Hobbies:  []string{"reading", "music", "sports", "travelling"},
		Statuses: []string{"Pending", "In Progress", "Done"},
	})
	require.NoError(t, err)
	repo := repository.NewMemoryTodoRepository()
	return NewController(schema, repo, func() time.Time { return fixedNow }), repo
}

func annValues() validation.Values {
	return validation.Values{
		UserName: "Ann",
		Gender:   "female",
		Hobbies:  []string{"music"},
		Age:      "30",
		Date:     "2026-10-19",
		TaskName: "Write report",
		Status:   "Pending",
	}
}

func TestOpenEmptyUsesDefaults(t *testing.T) {
	c, _ := newTestController(t)
	c.Open(nil)

	assert.Equal(t, StateEmpty, c.State())
	assert.Empty(t, c.SubjectID())
	assert.Equal(t, validation.Values{Age: "18", Date: "2026-10-18"}, c.Values())
	assert.Equal(t, domain.DateOnly(fixedNow), c.MinDate())
	assert.NotEmpty(t, c.Errors())
	assert.Empty(t, c.VisibleErrors(), "untouched fields must not show errors")
}

func TestChangeShowsOnlyTouchedErrors(t *testing.T) {
	c, _ := newTestController(t)
	c.Open(nil)

	require.NoError(t, c.Change(validation.FieldUserName, "John123"))

	assert.Equal(t, validation.Errors{
		validation.FieldUserName: "Accept only alphabets with white space, max length 15",
	}, c.VisibleErrors())

	require.NoError(t, c.Touch(validation.FieldHobbies))
	assert.Equal(t, "Select at least one hobby", c.VisibleErrors()[validation.FieldHobbies])

	require.NoError(t, c.Change(validation.FieldHobbies, "reading", "music"))
	assert.NotContains(t, c.VisibleErrors(), validation.FieldHobbies)
	assert.Equal(t, []string{"reading", "music"}, c.Values().Hobbies)
}

func TestUpdateTouchesChangedFields(t *testing.T) {
	c, _ := newTestController(t)
	c.Open(nil)

	v := c.Values()
	v.UserName = "John123"
	v.Status = ""
	c.Update(v)

	assert.Equal(t, validation.Errors{
		validation.FieldUserName: "Accept only alphabets with white space, max length 15",
	}, c.VisibleErrors())

	v.Hobbies = []string{}
	c.Update(v)
	assert.NotContains(t, c.VisibleErrors(), validation.FieldHobbies, "nil and empty hobbies are the same selection")
}

func TestUnknownField(t *testing.T) {
	c, _ := newTestController(t)

	assert.True(t, errors.Is(c.Change("nickname", "x"), ErrUnknownField))
	assert.True(t, errors.Is(c.Touch("nickname"), ErrUnknownField))
	assert.True(t, errors.Is(c.SetValues(annValues(), "nickname"), ErrUnknownField))
}

func TestSubmitInvalidBlocksAndTouchesEverything(t *testing.T) {
	c, repo := newTestController(t)
	c.Open(nil)

	_, ok, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, c.Errors(), c.VisibleErrors())
	assert.Contains(t, c.VisibleErrors(), validation.FieldTaskName)
}

func TestSubmitCreate(t *testing.T) {
	c, repo := newTestController(t)
	c.Open(nil)
	require.NoError(t, c.SetValues(annValues()))

	todo, ok, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	list := repo.List()
	require.Len(t, list, 1)
	assert.Equal(t, todo, list[0])
	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, domain.Draft{
		UserName: "Ann",
		Gender:   domain.GenderFemale,
		Hobbies:  []string{"music"},
		Age:      30,
		Date:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		TaskName: "Write report",
		Status:   "Pending",
	}, list[0].Draft())

	assert.Equal(t, StateEmpty, c.State(), "submit resets the form")
	assert.Equal(t, "", c.Values().UserName)
}

func TestSubmitCreateRejectsPastDate(t *testing.T) {
	c, repo := newTestController(t)
	c.Open(nil)
	v := annValues()
	v.Date = "2026-10-17"
	require.NoError(t, c.SetValues(v, validation.FieldDate))

	assert.Equal(t, "Date cannot be in the past", c.VisibleErrors()[validation.FieldDate])
	_, ok, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

func TestSubmitEditReplacesRecord(t *testing.T) {
	c, repo := newTestController(t)
	c.Open(nil)
	require.NoError(t, c.SetValues(annValues()))
	created, ok, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	c.Open(&created)
	assert.Equal(t, StateEditing, c.State())
	assert.Equal(t, created.ID, c.SubjectID())
	assert.Equal(t, annValues(), c.Values())
	assert.True(t, c.MinDate().IsZero())

	require.NoError(t, c.Change(validation.FieldStatus, "Done"))
	updated, ok, err := c.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	want := created
	want.Status = "Done"
	assert.Equal(t, want, updated)
	assert.Equal(t, []domain.Todo{want}, repo.List())
}

func TestEditKeepsPastDate(t *testing.T) {
	c, repo := newTestController(t)
	stored := repo.Add(domain.Draft{
		UserName: "Ann",
		Gender:   domain.GenderFemale,
		Hobbies:  []string{"music"},
		Age:      30,
		Date:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TaskName: "Write report",
		Status:   "Pending",
	})

	c.Open(&stored)
	require.NoError(t, c.Change(validation.FieldStatus, "Done"))
	_, ok, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, ok)
}

func TestCancelDoesNotMutate(t *testing.T) {
	c, repo := newTestController(t)
	c.Open(nil)
	require.NoError(t, c.SetValues(annValues()))

	c.Cancel()

	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, StateEmpty, c.State())
	assert.Equal(t, "", c.Values().TaskName)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "editing", StateEditing.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestSubmitEditOfVanishedRecord(t *testing.T) {
	c, repo := newTestController(t)
	stored := repo.Add(domain.Draft{
		UserName: "Ann",
		Gender:   domain.GenderFemale,
		Hobbies:  []string{"music"},
		Age:      30,
		Date:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		TaskName: "Write report",
		Status:   "Pending",
	})
	c.Open(&stored)
	require.True(t, repo.Remove(stored.ID))

	_, ok, err := c.Submit(context.Background())

	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrSubjectGone))
	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, StateEmpty, c.State())
}
