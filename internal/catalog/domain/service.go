package domain

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	CollectionDepartments       = "departments"
	CollectionEmployees         = "employees"
	CollectionExpenseGroups     = "expense_groups"
	CollectionExpenseCategories = "expense_categories"
	CollectionIncomeServices    = "income_services"
	CollectionTasks             = "tasks"
)

// Collections is the fixed set of diff-synced collections in sync order.
var Collections = []string{
	CollectionDepartments,
	CollectionEmployees,
	CollectionExpenseGroups,
	CollectionExpenseCategories,
	CollectionIncomeServices,
	CollectionTasks,
}

type Service interface {
	Upsert(ctx context.Context, collection string, payload json.RawMessage) (Record, error)
	Delete(ctx context.Context, collection, id string) error
	Snapshot(ctx context.Context) (Catalog, error)
	ActiveEmployees(ctx context.Context) ([]Employee, error)
}

var (
	ErrUnknownCollection = errors.New("unknown_collection")
	ErrInvalidPayload    = errors.New("invalid_payload")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidDepartment = errors.New("invalid_department")
	ErrInvalidGroup      = errors.New("invalid_group")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidSalary     = errors.New("invalid_salary")
	ErrNotFound          = errors.New("not_found")
)
