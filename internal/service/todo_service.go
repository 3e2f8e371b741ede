package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tomlord1122/todo-form/internal/domain"
	"github.com/Tomlord1122/todo-form/internal/form"
	"github.com/Tomlord1122/todo-form/internal/modal"
	"github.com/Tomlord1122/todo-form/internal/repository"
	"github.com/Tomlord1122/todo-form/internal/validation"
	"github.com/Tomlord1122/todo-form/internal/view"
)

// ErrNotFound is returned when an id does not name a stored todo.
var ErrNotFound = modal.ErrNotFound

// TodoResponse is the JSON representation of a stored todo.
type TodoResponse struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Gender   string   `json:"gender"`
	Hobbies  []string `json:"hobbies"`
	Age      int      `json:"age"`
	Date     string   `json:"date"`
	TaskName string   `json:"taskName"`
	Status   string   `json:"status"`
}

// TodoService applies UI events to the dialogs and the store and builds
// what the page shows. Events are applied one at a time.
//
// There is one workspace per process: the open dialog and its draft are
// shared by every browser tab talking to the server.
type TodoService interface {
	// Page snapshots the list and whichever dialog is open.
	Page(ctx context.Context) view.Page
	// Rows snapshots the list only.
	Rows(ctx context.Context) []view.Row

	OpenCreate(ctx context.Context)
	OpenEdit(ctx context.Context, id string) error
	OpenDelete(ctx context.Context, id string) error

	// ValidateForm replaces the draft with values and returns the
	// re-rendered form, as happens on every field change.
	ValidateForm(ctx context.Context, values validation.Values) (view.Form, error)
	// SubmitForm replaces the draft and submits it. ok is false when
	// validation blocked the submission and the form stays open. Editing a
	// record that vanished meanwhile closes the form and writes nothing.
	SubmitForm(ctx context.Context, values validation.Values) (ok bool, err error)
	CancelForm(ctx context.Context)

	ConfirmDelete(ctx context.Context) error
	CancelDelete(ctx context.Context)

	GetAllTodos(ctx context.Context) []TodoResponse
	GetTodoByID(ctx context.Context, id string) (*TodoResponse, error)

	// Changes signals after every store mutation.
	Changes() (<-chan struct{}, func())
	Stats() repository.Stats
}

type todoService struct {
	mu    sync.Mutex
	repo  repository.TodoRepository
	modal *modal.Coordinator
	opts  domain.Options
	log   *slog.Logger

	datastarScript string
}

// Config wires a TodoService.
type Config struct {
	Repository     repository.TodoRepository
	Options        domain.Options
	Logger         *slog.Logger
	Now            func() time.Time
	DatastarScript string
}

// NewTodoService creates a TodoService over the given repository.
func NewTodoService(cfg Config) (TodoService, error) {
	schema, err := validation.NewSchema(validation.Rules{
		AgeMin:   cfg.Options.AgeMin,
		AgeMax:   cfg.Options.AgeMax,
		Hobbies:  cfg.Options.Hobbies,
		Statuses: cfg.Options.Statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("build form schema: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	controller := form.NewController(schema, cfg.Repository, cfg.Now)
	return &todoService{
		repo:           cfg.Repository,
		modal:          modal.NewCoordinator(cfg.Repository, controller),
		opts:           cfg.Options,
		log:            logger,
		datastarScript: cfg.DatastarScript,
	}, nil
}

func (s *todoService) Page(ctx context.Context) view.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.modal.State()
	page := view.Page{
		Rows: view.NewRows(s.repo.List()),
		Modal: view.Modal{
			FormOpen:   st.FormOpen(),
			DeleteOpen: st.DeleteOpen(),
			Editing:    st.Editing(),
		},
		Form:           s.formView(),
		DatastarScript: s.datastarScript,
	}
	if subject, ok := st.Subject(); ok {
		page.Modal.SubjectID = subject.ID
	}
	return page
}

func (s *todoService) Rows(ctx context.Context) []view.Row {
	return view.NewRows(s.repo.List())
}

func (s *todoService) OpenCreate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modal.OpenCreate()
	s.log.DebugContext(ctx, "form opened", "mode", "create")
}

func (s *todoService) OpenEdit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.modal.OpenEdit(id); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "form opened", "mode", "edit", "id", id)
	return nil
}

func (s *todoService) OpenDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.modal.OpenDelete(id); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "delete confirmation opened", "id", id)
	return nil
}

func (s *todoService) ValidateForm(ctx context.Context, values validation.Values) (view.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modal.State().FormOpen() {
		return view.Form{}, modal.ErrNotOpen
	}
	s.modal.Form().Update(values)
	return s.formView(), nil
}

func (s *todoService) SubmitForm(ctx context.Context, values validation.Values) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modal.State().FormOpen() {
		return false, modal.ErrNotOpen
	}
	editing := s.modal.State().Editing()
	if err := s.modal.Form().SetValues(values); err != nil {
		return false, err
	}
	todo, ok, err := s.modal.Submit(ctx)
	if editing && IsNotFound(err) {
		s.log.WarnContext(ctx, "todo already gone", "id", todo.ID)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !ok {
		s.log.DebugContext(ctx, "form submission blocked", "errors", len(s.modal.Form().Errors()))
		return false, nil
	}
	if editing {
		s.log.InfoContext(ctx, "todo updated", "id", todo.ID)
	} else {
		s.log.InfoContext(ctx, "todo added", "id", todo.ID)
	}
	return true, nil
}

func (s *todoService) CancelForm(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modal.State().FormOpen() {
		s.modal.Cancel()
		s.log.DebugContext(ctx, "form cancelled")
	}
}

func (s *todoService) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, removed, err := s.modal.ConfirmDelete()
	if err != nil {
		return err
	}
	if !removed {
		s.log.WarnContext(ctx, "todo already gone", "id", subject.ID)
		return nil
	}
	s.log.InfoContext(ctx, "todo removed", "id", subject.ID)
	return nil
}

func (s *todoService) CancelDelete(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.modal.State().DeleteOpen() {
		s.modal.Cancel()
		s.log.DebugContext(ctx, "delete cancelled")
	}
}

func (s *todoService) GetAllTodos(ctx context.Context) []TodoResponse {
	todos := s.repo.List()
	responses := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		responses = append(responses, toResponse(todo))
	}
	return responses
}

func (s *todoService) GetTodoByID(ctx context.Context, id string) (*TodoResponse, error) {
	todo, ok := s.repo.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("todo with ID %q: %w", id, ErrNotFound)
	}
	resp := toResponse(todo)
	return &resp, nil
}

func (s *todoService) Changes() (<-chan struct{}, func()) {
	return s.repo.Subscribe()
}

func (s *todoService) Stats() repository.Stats {
	return s.repo.Stats()
}

// formView must be called with s.mu held.
func (s *todoService) formView() view.Form {
	f := s.modal.Form()
	return view.NewForm(f.Values(), f.VisibleErrors(), s.opts, s.modal.State().Editing(), f.MinDate())
}

func toResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:       todo.ID,
		UserName: todo.UserName,
		Gender:   string(todo.Gender),
		Hobbies:  todo.Hobbies,
		Age:      todo.Age,
		Date:     todo.Date.Format(domain.DateLayout),
		TaskName: todo.TaskName,
		Status:   todo.Status,
	}
}

// IsNotFound reports whether err means an unknown todo id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
