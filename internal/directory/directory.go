// Package directory provides read-only lookups of student and menu records.
// Mutation lives in the admin surface, outside this core; the dispatch path
// only needs these reads to be consistent at the instant a request is
// evaluated, so every lookup goes to the durable store.
package directory

import (
	"context"

	"github.com/canteenlab/mealqueue/internal/errors"
	"github.com/canteenlab/mealqueue/internal/models"
	"github.com/canteenlab/mealqueue/internal/store"
)

// Directory resolves students, menus and portion configurations
type Directory struct {
	store store.DirectoryStore
}

// New creates a new Directory over the given store
func New(s store.DirectoryStore) *Directory {
	return &Directory{store: s}
}

// GetStudent returns the student with the given id
func (d *Directory) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	students, err := d.store.LoadStudents(ctx)
	if err != nil {
		return nil, errors.Storage(err, "load students")
	}
	for i := range students {
		if students[i].StudentID == id {
			return &students[i], nil
		}
	}
	return nil, errors.NotFoundf("student %s not found", id)
}

// GetMenu returns the menu with the given id
func (d *Directory) GetMenu(ctx context.Context, id string) (*models.Menu, error) {
	menus, err := d.store.LoadMenus(ctx)
	if err != nil {
		return nil, errors.Storage(err, "load menus")
	}
	for i := range menus {
		if menus[i].MenuID == id {
			return &menus[i], nil
		}
	}
	return nil, errors.NotFoundf("menu %s not found", id)
}

// ListMenus returns the full menu catalog
func (d *Directory) ListMenus(ctx context.Context) ([]models.Menu, error) {
	menus, err := d.store.LoadMenus(ctx)
	if err != nil {
		return nil, errors.Storage(err, "load menus")
	}
	return menus, nil
}

// ListStudents returns the full student directory
func (d *Directory) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := d.store.LoadStudents(ctx)
	if err != nil {
		return nil, errors.Storage(err, "load students")
	}
	return students, nil
}

// GetPortionConfig returns the student's per-item portions for one menu.
// A nil map with nil error means the student exists but has no
// configuration for that menu; callers decide whether that is an error.
func (d *Directory) GetPortionConfig(ctx context.Context, studentID, menuID string) (map[string]models.PortionItem, error) {
	student, err := d.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return student.MenuConfigs[menuID], nil
}
