// Package validation holds the todo form schema. It turns the raw values a
// browser submits into a typed draft and a field-scoped error map.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tomlord1122/todo-form/internal/domain"
)

// Field names, as used by form inputs and error maps.
const (
	FieldUserName = "userName"
	FieldGender   = "gender"
	FieldHobbies  = "hobbies"
	FieldAge      = "age"
	FieldDate     = "date"
	FieldTaskName = "taskName"
	FieldStatus   = "status"
)

// Fields lists every form field in display order.
var Fields = []string{FieldUserName, FieldGender, FieldHobbies, FieldAge, FieldDate, FieldTaskName, FieldStatus}

var userNamePattern = regexp.MustCompile(`^[A-Za-z\s]{0,15}$`)

// Values are the raw, unparsed form inputs.
type Values struct {
	UserName string
	Gender   string
	Hobbies  []string
	Age      string
	Date     string
	TaskName string
	Status   string
}

// ValuesFromDraft renders a draft back into form inputs.
func ValuesFromDraft(d domain.Draft) Values {
	v := Values{
		UserName: d.UserName,
		Gender:   string(d.Gender),
		Hobbies:  slices.Clone(d.Hobbies),
		Age:      strconv.Itoa(d.Age),
		TaskName: d.TaskName,
		Status:   d.Status,
	}
	if !d.Date.IsZero() {
		v.Date = d.Date.Format(domain.DateLayout)
	}
	return v
}

// Errors maps a field name to its message. A valid field has no entry.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Rules are the configurable bounds of the schema.
type Rules struct {
	AgeMin   int
	AgeMax   int
	Hobbies  []string
	Statuses []string
}

// Schema validates todo form values.
type Schema struct {
	rules    Rules
	validate *validator.Validate
}

type candidate struct {
	UserName string     `form:"userName" validate:"required,username"`
	Gender   string     `form:"gender" validate:"required,oneof=male female"`
	Hobbies  []string   `form:"hobbies" validate:"min=1,unique,dive,hobby"`
	Age      *int       `form:"age" validate:"required,agerange"`
	Date     *time.Time `form:"date" validate:"required,notpast"`
	TaskName string     `form:"taskName" validate:"required"`
	Status   string     `form:"status" validate:"required,status"`
}

type todayKey struct{}

// WithToday enables the "not in the past" date rule, relative to today.
func WithToday(ctx context.Context, today time.Time) context.Context {
	return context.WithValue(ctx, todayKey{}, domain.DateOnly(today))
}

func todayFrom(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(todayKey{}).(time.Time)
	return t, ok
}

// NewSchema builds a schema for the given rules.
func NewSchema(rules Rules) (*Schema, error) {
	if rules.AgeMin > rules.AgeMax {
		return nil, fmt.Errorf("age bounds [%d, %d] are inverted", rules.AgeMin, rules.AgeMax)
	}
	if len(rules.Hobbies) == 0 || len(rules.Statuses) == 0 {
		return nil, errors.New("hobby and status options must not be empty")
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	s := &Schema{rules: rules, validate: v}
	registrations := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return userNamePattern.MatchString(fl.Field().String())
		},
		"hobby": func(fl validator.FieldLevel) bool {
			return slices.Contains(s.rules.Hobbies, fl.Field().String())
		},
		"status": func(fl validator.FieldLevel) bool {
			return slices.Contains(s.rules.Statuses, fl.Field().String())
		},
		"agerange": func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() == reflect.Ptr {
				f = f.Elem()
			}
			age := f.Int()
			return age >= int64(s.rules.AgeMin) && age <= int64(s.rules.AgeMax)
		},
	}
	for tag, fn := range registrations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}
	err := v.RegisterValidationCtx("notpast", func(ctx context.Context, fl validator.FieldLevel) bool {
		today, ok := todayFrom(ctx)
		if !ok {
			return true
		}
		switch date := fl.Field().Interface().(type) {
		case time.Time:
			return !domain.DateOnly(date).Before(today)
		case *time.Time:
			return date == nil || !domain.DateOnly(*date).Before(today)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) Rules() Rules { return s.rules }

// Validate parses and checks values. The returned draft is only meaningful
// when the error map is empty.
func (s *Schema) Validate(ctx context.Context, values Values) (domain.Draft, Errors) {
	errs := Errors{}
	c := candidate{
		UserName: values.UserName,
		Gender:   values.Gender,
		Hobbies:  values.Hobbies,
		TaskName: values.TaskName,
		Status:   values.Status,
	}

	if raw := strings.TrimSpace(values.Age); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			errs[FieldAge] = "Age must be a number"
		} else {
			c.Age = &age
		}
	}
	if raw := strings.TrimSpace(values.Date); raw != "" {
		date, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			errs[FieldDate] = "Date must be a valid date"
		} else {
			c.Date = &date
		}
	}

	if err := s.validate.StructCtx(ctx, c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			errs[""] = err.Error()
			return domain.Draft{}, errs
		}
		for _, fe := range fieldErrs {
			field := fieldName(fe)
			if _, seen := errs[field]; seen {
				continue
			}
			errs[field] = s.message(field, fe, c)
		}
	}
	if !errs.Valid() {
		return domain.Draft{}, errs
	}

	return domain.Draft{
		UserName: c.UserName,
		Gender:   domain.Gender(c.Gender),
		Hobbies:  slices.Clone(c.Hobbies),
		Age:      *c.Age,
		Date:     domain.DateOnly(*c.Date),
		TaskName: c.TaskName,
		Status:   c.Status,
	}, errs
}

// fieldName strips the element index dive adds, e.g. "hobbies[2]".
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func (s *Schema) message(field string, fe validator.FieldError, c candidate) string {
	switch field {
	case FieldUserName:
		if fe.Tag() == "required" {
			return "User Name is required"
		}
		return "Accept only alphabets with white space, max length 15"
	case FieldGender:
		if fe.Tag() == "required" {
			return "Gender is required"
		}
		return "Gender must be one of: " + FormatValidValues(domain.Genders())
	case FieldHobbies:
		switch fe.Tag() {
		case "min":
			return "Select at least one hobby"
		case "unique":
			return "Hobbies must not repeat"
		}
		return "Hobbies must be among: " + FormatValidValues(s.rules.Hobbies)
	case FieldAge:
		if fe.Tag() == "required" {
			return "Age is required"
		}
		if c.Age != nil && *c.Age < s.rules.AgeMin {
			return fmt.Sprintf("Age must be greater than or equal to %d", s.rules.AgeMin)
		}
		return fmt.Sprintf("Age must be less than or equal to %d", s.rules.AgeMax)
	case FieldDate:
		if fe.Tag() == "required" {
			return "Date is required"
		}
		return "Date cannot be in the past"
	case FieldTaskName:
		return "Task Name is required"
	case FieldStatus:
		if fe.Tag() == "required" {
			return "Status is required"
		}
		return "Status must be one of: " + FormatValidValues(s.rules.Statuses)
	}
	return fe.Error()
}

// FormatValidValues joins string-like values for error messages.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}
