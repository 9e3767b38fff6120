package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/bizledger/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var departments = []string{"Operations", "Sales", "Marketing", "Technology", "HR"}

type groupSeed struct {
	name       string
	isCOGS     bool
	categories []string
}

var expenseGroups = []groupSeed{
	{name: "Operational Costs", categories: []string{"Rent", "Utilities"}},
	{name: "Marketing & Sales", categories: []string{"Online Ads", "Events"}},
	{name: "Personnel", categories: []string{"Salaries"}},
	{name: "Office & Supplies", categories: []string{"Stationery"}},
	{name: "Cost of Services", isCOGS: true, categories: []string{"Inspector Fees", "Materials"}},
}

var incomeServices = []string{"Financial Consulting", "Software Implementation", "Audit Services"}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Config config.Config
	Auth   authdomain.Service
}

// Run performs first-start bootstrap. Every step is a no-op on a populated store.
func Run(p Params) error {
	ctx := context.Background()
	log := p.Log.Named("seed")

	if p.Config.Bootstrap.SeedReferenceData {
		seeded, err := EnsureReferenceData(ctx, p.DB, p.GenID)
		if err != nil {
			return err
		}
		if seeded {
			log.Info("reference data seeded")
		}
	}

	created, err := EnsureAdmin(ctx, p.Auth, p.Config.Bootstrap)
	if err != nil {
		return err
	}
	if created {
		log.Info("bootstrap admin created", zap.String("email", p.Config.Bootstrap.AdminEmail))
	} else if strings.TrimSpace(p.Config.Bootstrap.AdminPassword) == "" {
		log.Debug("bootstrap admin skipped: BOOTSTRAP_ADMIN_PASSWORD not set")
	}
	return nil
}

// EnsureReferenceData seeds departments, expense groups with their categories and income
// services when the catalog is empty.
func EnsureReferenceData(ctx context.Context, db *gorm.DB, node *snowflake.Node) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&catalogdomain.Department{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range departments {
			if err := tx.Create(&catalogdomain.Department{ID: node.Generate().String(), Name: name}).Error; err != nil {
				return err
			}
		}
		for _, g := range expenseGroups {
			group := catalogdomain.ExpenseGroup{ID: node.Generate().String(), Name: g.name, IsCOGS: g.isCOGS}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			for _, name := range g.categories {
				category := catalogdomain.ExpenseCategory{ID: node.Generate().String(), GroupID: group.ID, Name: name}
				if err := tx.Create(&category).Error; err != nil {
					return err
				}
			}
		}
		for _, name := range incomeServices {
			if err := tx.Create(&catalogdomain.IncomeService{ID: node.Generate().String(), Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// EnsureAdmin creates the configured admin account on an empty user table. Without a
// configured password nothing is created.
func EnsureAdmin(ctx context.Context, auth authdomain.Service, cfg config.BootstrapConfig) (bool, error) {
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return false, nil
	}
	return auth.Bootstrap(ctx, authdomain.CreateUserRequest{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     string(authdomain.RoleAdmin),
	})
}
