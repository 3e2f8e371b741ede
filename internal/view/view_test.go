package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/validation"
)

var testOptions = domain.Options{
	AgeMin:   18,
	AgeMax:   100,
	Hobbies:  []string{"reading", "music"},
	Statuses: []string{"Pending", "Done"},
}

func TestNewRows(t *testing.T) {
	rows := NewRows([]domain.Todo{{
		ID:       "id-1",
		UserName: "Ann",
		Gender:   domain.GenderFemale,
		Hobbies:  []string{"music", "reading"},
		Age:      30,
		Date:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		TaskName: "Write report",
		Status:   "Pending",
	}})

	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		ID:       "id-1",
		UserName: "Ann",
		Gender:   "female",
		Hobbies:  "music, reading",
		Age:      30,
		Date:     "Mon Oct 19 2026",
		TaskName: "Write report",
		Status:   "Pending",
	}, rows[0])
}

func TestNewForm(t *testing.T) {
	values := validation.Values{Gender: "male", Hobbies: []string{"music"}, Status: "Done"}
	f := NewForm(values, nil, testOptions, true, time.Time{})

	assert.Equal(t, "Update Todo", f.Heading)
	assert.Empty(t, f.MinDate)
	assert.Equal(t, []Choice{{"male", "male", true}, {"female", "female", false}}, f.Genders)
	assert.Equal(t, []Choice{{"reading", "reading", false}, {"music", "music", true}}, f.Hobbies)
	assert.Equal(t, []Choice{{"Pending", "Pending", false}, {"Done", "Done", true}}, f.Statuses)

	f = NewForm(validation.Values{}, nil, testOptions, false, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Insert Todo", f.Heading)
	assert.Equal(t, "2026-10-18", f.MinDate)
}

func TestRenderPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	page := Page{
		Rows:  []Row{{ID: "id-1", UserName: "Ann", Hobbies: "music", Age: 30, TaskName: "<b>report</b>"}},
		Modal: Modal{FormOpen: true},
		Form: NewForm(validation.Values{UserName: "John123"}, validation.Errors{
			validation.FieldUserName: "Accept only alphabets with white space, max length 15",
		}, testOptions, false, time.Time{}),
	}

	var b strings.Builder
	require.NoError(t, r.RenderPage(&b, page))
	html := b.String()

	assert.Contains(t, html, `<h1 class="text-center">Todo List</h1>`)
	assert.Contains(t, html, `action="/todos/id-1/edit"`)
	assert.Contains(t, html, `&lt;b&gt;report&lt;/b&gt;`)
	assert.Contains(t, html, "Insert Todo")
	assert.Contains(t, html, "Accept only alphabets with white space, max length 15")
	assert.NotContains(t, html, "Delete Confirmation")
}

func TestRenderDeleteModal(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, r.RenderPage(&b, Page{Modal: Modal{DeleteOpen: true, SubjectID: "id-1"}}))

	assert.Contains(t, b.String(), "Are you sure you want to delete this todo?")
	assert.NotContains(t, b.String(), `id="todo-form"`)
}

func TestRenderFragments(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	table, err := r.RenderTable(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(table, `<table id="todo-table"`))

	form, err := r.RenderForm(NewForm(validation.Values{}, nil, testOptions, false, time.Time{}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(form, `<form id="todo-form"`))
}
