package repository

import (
	"github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) domain.Repositories {
	return domain.Repositories{
		Departments:       repository.ProvideStore[domain.Department](db),
		Employees:         repository.ProvideStore[domain.Employee](db),
		ExpenseGroups:     repository.ProvideStore[domain.ExpenseGroup](db),
		ExpenseCategories: repository.ProvideStore[domain.ExpenseCategory](db),
		IncomeServices:    repository.ProvideStore[domain.IncomeService](db),
		Tasks:             repository.ProvideStore[domain.Task](db),
	}
}
