package service

import (
	"strings"

	"github.com/smallbiznis/bizledger/internal/catalog/domain"
)

func prepareDepartment(d *domain.Department) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.ErrInvalidName
	}
	return nil
}

func prepareEmployee(e *domain.Employee) error {
	e.Name = strings.TrimSpace(e.Name)
	e.EmployeeNumber = strings.TrimSpace(e.EmployeeNumber)
	e.DepartmentID = strings.TrimSpace(e.DepartmentID)
	e.Nationality = strings.TrimSpace(e.Nationality)
	if e.Name == "" {
		return domain.ErrInvalidName
	}
	if e.DepartmentID == "" {
		return domain.ErrInvalidDepartment
	}
	if e.Salary.IsNegative() {
		return domain.ErrInvalidSalary
	}
	return nil
}

func prepareExpenseGroup(g *domain.ExpenseGroup) error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return domain.ErrInvalidName
	}
	return nil
}

func prepareExpenseCategory(c *domain.ExpenseCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	c.GroupID = strings.TrimSpace(c.GroupID)
	if c.Name == "" {
		return domain.ErrInvalidName
	}
	if c.GroupID == "" {
		return domain.ErrInvalidGroup
	}
	return nil
}

func prepareIncomeService(is *domain.IncomeService) error {
	is.Name = strings.TrimSpace(is.Name)
	if is.Name == "" {
		return domain.ErrInvalidName
	}
	return nil
}

func (s *Service) prepareTask(t *domain.Task) error {
	t.Address = strings.TrimSpace(t.Address)
	t.Notes = strings.TrimSpace(t.Notes)
	if t.Address == "" {
		return domain.ErrInvalidAddress
	}
	switch t.Status {
	case "":
		t.Status = domain.TaskInProgress
	case domain.TaskInProgress, domain.TaskCompleted:
	default:
		return domain.ErrInvalidStatus
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.clock.Now()
	}
	return nil
}
