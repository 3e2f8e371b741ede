package view

import (
	"embed"
	"html/template"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/validation"
)

//go:embed templates/*.html
var templatesFS embed.FS

// displayDateLayout renders table dates like "Mon Oct 19 2026".
const displayDateLayout = "Mon Jan 02 2006"

// Page is everything the single page renders.
type Page struct {
	Rows           []Row
	Modal          Modal
	Form           Form
	DatastarScript string
}

// Row is one table line, with hobbies and date already formatted.
type Row struct {
	ID       string
	UserName string
	Gender   string
	Hobbies  string
	Age      int
	Date     string
	TaskName string
	Status   string
}

// Modal says which dialog the page shows and for which record.
type Modal struct {
	FormOpen   bool
	DeleteOpen bool
	Editing    bool
	SubjectID  string
}

// Choice is one radio, checkbox or select option.
type Choice struct {
	Value   string
	Label   string
	Checked bool
}

// Form is the form dialog's view model.
type Form struct {
	Heading  string
	Values   validation.Values
	Errors   validation.Errors
	Genders  []Choice
	Hobbies  []Choice
	Statuses []Choice
	AgeMin   int
	AgeMax   int
	MinDate  string
}

// NewRows converts records to table rows, keeping their order.
func NewRows(todos []domain.Todo) []Row {
	rows := make([]Row, 0, len(todos))
	for _, t := range todos {
		row := Row{
			ID:       t.ID,
			UserName: t.UserName,
			Gender:   string(t.Gender),
			Hobbies:  strings.Join(t.Hobbies, ", "),
			Age:      t.Age,
			TaskName: t.TaskName,
			Status:   t.Status,
		}
		if !t.Date.IsZero() {
			row.Date = t.Date.Format(displayDateLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// NewForm builds the form modal's widgets from the draft and configured options.
func NewForm(values validation.Values, errs validation.Errors, opts domain.Options, editing bool, minDate time.Time) Form {
	f := Form{
		Heading: "Insert Todo",
		Values:  values,
		Errors:  errs,
		AgeMin:  opts.AgeMin,
		AgeMax:  opts.AgeMax,
	}
	if editing {
		f.Heading = "Update Todo"
	}
	if !minDate.IsZero() {
		f.MinDate = minDate.Format(domain.DateLayout)
	}
	for _, g := range domain.Genders() {
		f.Genders = append(f.Genders, Choice{Value: string(g), Label: string(g), Checked: values.Gender == string(g)})
	}
	for _, h := range opts.Hobbies {
		f.Hobbies = append(f.Hobbies, Choice{Value: h, Label: h, Checked: slices.Contains(values.Hobbies, h)})
	}
	for _, s := range opts.Statuses {
		f.Statuses = append(f.Statuses, Choice{Value: s, Label: s, Checked: values.Status == s})
	}
	return f
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderPage writes the whole page.
func (r *Renderer) RenderPage(w io.Writer, p Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}

// RenderTable renders the #todo-table fragment.
func (r *Renderer) RenderTable(rows []Row) (string, error) {
	return r.render("table", rows)
}

// RenderForm renders the #todo-form fragment.
func (r *Renderer) RenderForm(f Form) (string, error) {
	return r.render("form", f)
}

func (r *Renderer) render(name string, data any) (string, error) {
	var b strings.Builder
	if err := r.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
