package authorization

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/smallbiznis/bizledger/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectState   = "state"
	ObjectReport  = "report"
	ObjectCatalog = "catalog"
	ObjectExpense = "expense"
	ObjectIncome  = "income"
	ObjectUser    = "user"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

// Authorizer answers whether a role may perform an action on an object.
type Authorizer struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads policies from the casbin_rule table, seeding the role defaults.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func New(p Params) *Authorizer {
	return &Authorizer{
		log:      p.Log.Named("authorization"),
		enforcer: p.Enforcer,
	}
}

func (a *Authorizer) Authorize(role domain.Role, object, action string) error {
	subject := roleSubject(role)
	if subject == "" {
		return domain.ErrForbidden
	}
	allowed, err := a.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		a.log.Debug("access denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return domain.ErrForbidden
	}
	return nil
}

func roleSubject(role domain.Role) string {
	name := strings.ToLower(strings.TrimSpace(string(role)))
	if name == "" {
		return ""
	}
	return fmt.Sprintf("role:%s", name)
}

// seedPolicies is idempotent; existing rules are left in place.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewer := roleSubject(domain.RoleViewer)
	editor := roleSubject(domain.RoleEditor)
	admin := roleSubject(domain.RoleAdmin)

	inherits := [][]string{
		{editor, viewer},
		{admin, editor},
	}
	for _, link := range inherits {
		has, err := enforcer.HasGroupingPolicy(link)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddGroupingPolicy(link); err != nil {
			return err
		}
	}

	policies := [][]string{
		{viewer, ObjectState, ActionRead},
		{viewer, ObjectReport, ActionRead},

		{editor, ObjectCatalog, ActionWrite},
		{editor, ObjectExpense, "*"},
		{editor, ObjectIncome, "*"},

		{admin, ObjectUser, "*"},
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
