package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/report/domain"
)

const recentExpenseCount = 5

type names struct {
	departments map[string]string
	employees   map[string]string
	categories  map[string]string
}

func indexNames(c catalogdomain.Catalog) names {
	n := names{
		departments: make(map[string]string, len(c.Departments)),
		employees:   make(map[string]string, len(c.Employees)),
		categories:  make(map[string]string, len(c.ExpenseCategories)),
	}
	for _, d := range c.Departments {
		n.departments[d.ID] = d.Name
	}
	for _, e := range c.Employees {
		n.employees[e.ID] = e.Name
	}
	for _, cat := range c.ExpenseCategories {
		n.categories[cat.ID] = cat.Name
	}
	return n
}

func lookup(m map[string]string, id string) string {
	if name, ok := m[id]; ok {
		return name
	}
	return id
}

func BuildRoster(c catalogdomain.Catalog) domain.Roster {
	n := indexNames(c)
	out := domain.Roster{
		Rows:        make([]domain.RosterRow, 0, len(c.Employees)),
		TotalSalary: decimal.Zero,
	}
	for _, e := range c.Employees {
		status := "Inactive"
		if e.IsActive {
			status = "Active"
			out.ActiveCount++
		}
		out.Rows = append(out.Rows, domain.RosterRow{
			EmployeeNumber: e.EmployeeNumber,
			Name:           e.Name,
			Department:     lookup(n.departments, e.DepartmentID),
			Salary:         e.Salary,
			Nationality:    e.Nationality,
			Status:         status,
		})
		out.TotalSalary = out.TotalSalary.Add(e.Salary)
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].EmployeeNumber < out.Rows[j].EmployeeNumber
	})
	return out
}

func BuildExpensesByEmployee(c catalogdomain.Catalog, expenses []expensedomain.ExpenseEntry) domain.EmployeeExpenseReport {
	n := indexNames(c)
	out := domain.EmployeeExpenseReport{
		Rows:      make([]domain.EmployeeExpenseRow, 0, len(expenses)),
		Total:     decimal.Zero,
		TotalPaid: decimal.Zero,
		Remaining: decimal.Zero,
	}
	for _, e := range expenses {
		employee := domain.DirectLabel
		if e.EmployeeID != nil && *e.EmployeeID != "" {
			employee = lookup(n.employees, *e.EmployeeID)
		}
		out.Rows = append(out.Rows, domain.EmployeeExpenseRow{
			Date:        time.Time(e.Date).Format(expensedomain.DateLayout),
			JournalNo:   e.JournalNo,
			Employee:    employee,
			Department:  lookup(n.departments, e.DepartmentID),
			Category:    lookup(n.categories, e.CategoryID),
			Amount:      e.Amount,
			AmountPaid:  e.AmountPaid,
			Remaining:   e.RemainingAmount,
			Description: e.Description,
		})
		out.Total = out.Total.Add(e.Amount)
		out.TotalPaid = out.TotalPaid.Add(e.AmountPaid)
		out.Remaining = out.Remaining.Add(e.RemainingAmount)
	}
	return out
}

func BuildExpensesByDepartment(c catalogdomain.Catalog, expenses []expensedomain.ExpenseEntry) domain.DepartmentExpenseReport {
	n := indexNames(c)
	rows := make(map[string]*domain.DepartmentExpenseRow)
	order := make([]string, 0)
	total := decimal.Zero

	for _, e := range expenses {
		row, ok := rows[e.DepartmentID]
		if !ok {
			row = &domain.DepartmentExpenseRow{
				DepartmentID: e.DepartmentID,
				Department:   lookup(n.departments, e.DepartmentID),
				Total:        decimal.Zero,
				Paid:         decimal.Zero,
				Remaining:    decimal.Zero,
			}
			rows[e.DepartmentID] = row
			order = append(order, e.DepartmentID)
		}
		row.Total = row.Total.Add(e.Amount)
		row.Paid = row.Paid.Add(e.AmountPaid)
		row.Remaining = row.Remaining.Add(e.RemainingAmount)
		row.Count++
		total = total.Add(e.Amount)
	}

	out := domain.DepartmentExpenseReport{
		Rows:  make([]domain.DepartmentExpenseRow, 0, len(order)),
		Total: total,
	}
	for _, id := range order {
		out.Rows = append(out.Rows, *rows[id])
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Department < out.Rows[j].Department
	})
	return out
}

func BuildDashboard(c catalogdomain.Catalog, expenses []expensedomain.ExpenseEntry, outstanding []expensedomain.OutstandingExpense) domain.Dashboard {
	n := indexNames(c)
	out := domain.Dashboard{
		TotalExpenses:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}

	byDept := newTotals()
	byCategory := newTotals()
	for _, e := range expenses {
		out.TotalExpenses = out.TotalExpenses.Add(e.Amount)
		out.TotalPaid = out.TotalPaid.Add(e.AmountPaid)
		byDept.add(e.DepartmentID, lookup(n.departments, e.DepartmentID), e.Amount)
		byCategory.add(e.CategoryID, lookup(n.categories, e.CategoryID), e.Amount)
	}
	for _, o := range outstanding {
		out.TotalOutstanding = out.TotalOutstanding.Add(o.Amount)
	}

	out.ByDepartment = byDept.sorted()
	out.ByCategory = byCategory.sorted()
	if len(out.ByDepartment) > 0 {
		top := out.ByDepartment[0]
		out.TopDepartment = &top
	}

	recent := append([]expensedomain.ExpenseEntry(nil), expenses...)
	sort.SliceStable(recent, func(i, j int) bool {
		di, dj := time.Time(recent[i].Date), time.Time(recent[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentExpenseCount {
		recent = recent[:recentExpenseCount]
	}
	out.RecentExpenses = recent
	return out
}

type totals struct {
	index map[string]int
	items []domain.NamedTotal
}

func newTotals() *totals {
	return &totals{index: make(map[string]int)}
}

func (t *totals) add(id, name string, amount decimal.Decimal) {
	i, ok := t.index[id]
	if !ok {
		t.index[id] = len(t.items)
		t.items = append(t.items, domain.NamedTotal{ID: id, Name: name, Amount: decimal.Zero})
		i = len(t.items) - 1
	}
	t.items[i].Amount = t.items[i].Amount.Add(amount)
}

// sorted orders by amount descending, ties by name.
func (t *totals) sorted() []domain.NamedTotal {
	out := append(make([]domain.NamedTotal, 0, len(t.items)), t.items...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}
