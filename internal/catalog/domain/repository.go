package domain

import (
	"github.com/smallbiznis/bizledger/pkg/repository"
)

// Repositories groups the per-collection stores.
type Repositories struct {
	Departments       repository.Repository[Department]
	Employees         repository.Repository[Employee]
	ExpenseGroups     repository.Repository[ExpenseGroup]
	ExpenseCategories repository.Repository[ExpenseCategory]
	IncomeServices    repository.Repository[IncomeService]
	Tasks             repository.Repository[Task]
}
