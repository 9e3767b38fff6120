package domain

import (
	"context"

	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
)

// Session identifies the signed-in user on the client side. It is never replaced by a
// server fetch.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"-"`
}

func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// AppState is the whole ledger as seen by one client.
type AppState struct {
	Session           Session                            `json:"session"`
	Departments       []catalogdomain.Department         `json:"departments"`
	Employees         []catalogdomain.Employee           `json:"employees"`
	ExpenseGroups     []catalogdomain.ExpenseGroup       `json:"expense_groups"`
	ExpenseCategories []catalogdomain.ExpenseCategory    `json:"expense_categories"`
	IncomeServices    []catalogdomain.IncomeService      `json:"income_services"`
	Tasks             []catalogdomain.Task               `json:"tasks"`
	Expenses          []expensedomain.ExpenseEntry       `json:"expenses"`
	Outstanding       []expensedomain.OutstandingExpense `json:"outstanding"`
	Incomes           []incomedomain.IncomeEntry         `json:"incomes"`
}

// Clone returns a copy that shares no slices with s.
func (s AppState) Clone() AppState {
	out := s
	out.Departments = cloneSlice(s.Departments)
	out.Employees = cloneSlice(s.Employees)
	out.ExpenseGroups = cloneSlice(s.ExpenseGroups)
	out.ExpenseCategories = cloneSlice(s.ExpenseCategories)
	out.IncomeServices = cloneSlice(s.IncomeServices)
	out.Tasks = cloneSlice(s.Tasks)
	out.Expenses = make([]expensedomain.ExpenseEntry, len(s.Expenses))
	for i, e := range s.Expenses {
		if e.EmployeeID != nil {
			id := *e.EmployeeID
			e.EmployeeID = &id
		}
		out.Expenses[i] = e
	}
	out.Outstanding = cloneSlice(s.Outstanding)
	out.Incomes = make([]incomedomain.IncomeEntry, len(s.Incomes))
	for i, e := range s.Incomes {
		out.Incomes[i] = e.Clone()
	}
	return out
}

// WithServerData replaces every ledger collection with server's, keeping the session.
func (s AppState) WithServerData(server AppState) AppState {
	out := server.Clone()
	out.Session = s.Session
	return out
}

func (s AppState) Catalog() catalogdomain.Catalog {
	return catalogdomain.Catalog{
		Departments:       s.Departments,
		Employees:         s.Employees,
		ExpenseGroups:     s.ExpenseGroups,
		ExpenseCategories: s.ExpenseCategories,
		IncomeServices:    s.IncomeServices,
		Tasks:             s.Tasks,
	}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

type Service interface {
	GetState(ctx context.Context) (AppState, error)
}
