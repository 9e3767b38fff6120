package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/stretchr/testify/assert"
)

func TestCloneDoesNotShareSlices(t *testing.T) {
	orig := AppState{
		Departments: []catalogdomain.Department{{ID: "d1", Name: "Ops"}},
		Incomes: []incomedomain.IncomeEntry{{
			ID:        "i1",
			CogsItems: []incomedomain.IncomeCogsItem{{ID: "c1", Amount: decimal.NewFromInt(5)}},
		}},
	}

	clone := orig.Clone()
	clone.Departments[0].Name = "Changed"
	clone.Incomes[0].CogsItems[0].ID = "c2"

	assert.Equal(t, "Ops", orig.Departments[0].Name)
	assert.Equal(t, "c1", orig.Incomes[0].CogsItems[0].ID)
}

func TestWithServerDataKeepsSession(t *testing.T) {
	local := AppState{
		Session:     Session{UserID: "u1", Email: "owner@example.com", Token: "tok"},
		Departments: []catalogdomain.Department{{ID: "stale", Name: "Old"}},
	}
	server := AppState{
		Session:     Session{UserID: "someone-else"},
		Departments: []catalogdomain.Department{{ID: "d1", Name: "Ops"}},
		Tasks:       []catalogdomain.Task{{ID: "t1", Address: "1 Main St"}},
	}

	merged := local.WithServerData(server)
	assert.Equal(t, local.Session, merged.Session)
	assert.True(t, merged.Session.LoggedIn())
	assert.Equal(t, server.Departments, merged.Departments)
	assert.Equal(t, server.Tasks, merged.Tasks)
}
