package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is anything stored in a diff-synced collection.
type Record interface {
	GetID() string
}

type Department struct {
	ID   string `gorm:"primaryKey;size:40" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (Department) TableName() string { return "departments" }
func (d Department) GetID() string   { return d.ID }

type Employee struct {
	ID             string          `gorm:"primaryKey;size:40" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	EmployeeNumber string          `gorm:"column:employee_number" json:"employee_number"`
	DepartmentID   string          `gorm:"size:40;not null;index" json:"department_id"`
	Salary         decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"salary"`
	Nationality    string          `json:"nationality"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
}

func (Employee) TableName() string { return "employees" }
func (e Employee) GetID() string   { return e.ID }

type ExpenseGroup struct {
	ID     string `gorm:"primaryKey;size:40" json:"id"`
	Name   string `gorm:"not null" json:"name"`
	IsCOGS bool   `gorm:"column:is_cogs;not null;default:false" json:"is_cogs"`
}

func (ExpenseGroup) TableName() string { return "expense_groups" }
func (g ExpenseGroup) GetID() string   { return g.ID }

type ExpenseCategory struct {
	ID      string `gorm:"primaryKey;size:40" json:"id"`
	GroupID string `gorm:"size:40;not null;index" json:"group_id"`
	Name    string `gorm:"not null" json:"name"`
}

func (ExpenseCategory) TableName() string { return "expense_categories" }
func (c ExpenseCategory) GetID() string   { return c.ID }

type IncomeService struct {
	ID   string `gorm:"primaryKey;size:40" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

func (IncomeService) TableName() string { return "income_services" }
func (s IncomeService) GetID() string   { return s.ID }

type TaskStatus string

const (
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

type Task struct {
	ID        string     `gorm:"primaryKey;size:40" json:"id"`
	Address   string     `gorm:"not null" json:"address"`
	Notes     string     `json:"notes"`
	Status    TaskStatus `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (Task) TableName() string { return "tasks" }
func (t Task) GetID() string   { return t.ID }

// Catalog is every diff-synced collection at one point in time.
type Catalog struct {
	Departments       []Department      `json:"departments"`
	Employees         []Employee        `json:"employees"`
	ExpenseGroups     []ExpenseGroup    `json:"expense_groups"`
	ExpenseCategories []ExpenseCategory `json:"expense_categories"`
	IncomeServices    []IncomeService   `json:"income_services"`
	Tasks             []Task            `json:"tasks"`
}

// Models lists the catalog tables for AutoMigrate.
func Models() []any {
	return []any{
		&Department{},
		&Employee{},
		&ExpenseGroup{},
		&ExpenseCategory{},
		&IncomeService{},
		&Task{},
	}
}
