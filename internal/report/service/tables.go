package service

import (
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/report/domain"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func rosterTable(r domain.Roster) domain.Table {
	t := domain.Table{
		Title:   "Employee Roster",
		Columns: []string{"No.", "Name", "Department", "Salary", "Nationality", "Status"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.EmployeeNumber, row.Name, row.Department, money(row.Salary), row.Nationality, row.Status,
		})
	}
	t.Footer = []string{"", "Total", "", money(r.TotalSalary), "", strconv.Itoa(r.ActiveCount) + " active"}
	return t
}

func employeeExpenseTable(r domain.EmployeeExpenseReport) domain.Table {
	t := domain.Table{
		Title:   "Expenses by Employee",
		Columns: []string{"Date", "Journal", "Employee", "Department", "Category", "Amount", "Paid", "Remaining"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.Date, row.JournalNo, row.Employee, row.Department, row.Category,
			money(row.Amount), money(row.AmountPaid), money(row.Remaining),
		})
	}
	t.Footer = []string{"Total", "", "", "", "", money(r.Total), money(r.TotalPaid), money(r.Remaining)}
	return t
}

func departmentExpenseTable(r domain.DepartmentExpenseReport) domain.Table {
	t := domain.Table{
		Title:   "Expenses by Department",
		Columns: []string{"Department", "Entries", "Total", "Paid", "Remaining"},
	}
	for _, row := range r.Rows {
		t.Rows = append(t.Rows, []string{
			row.Department, strconv.Itoa(row.Count), money(row.Total), money(row.Paid), money(row.Remaining),
		})
	}
	t.Footer = []string{"Total", "", money(r.Total), "", ""}
	return t
}

func dashboardTable(d domain.Dashboard) domain.Table {
	t := domain.Table{
		Title:   "Dashboard",
		Columns: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Total expenses", money(d.TotalExpenses)},
			{"Total paid", money(d.TotalPaid)},
			{"Total outstanding", money(d.TotalOutstanding)},
		},
	}
	for _, dept := range d.ByDepartment {
		t.Rows = append(t.Rows, []string{"Department: " + dept.Name, money(dept.Amount)})
	}
	for _, cat := range d.ByCategory {
		t.Rows = append(t.Rows, []string{"Category: " + cat.Name, money(cat.Amount)})
	}
	return t
}
