package ledgersync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	statedomain "github.com/smallbiznis/bizledger/internal/state/domain"
)

type operation struct {
	collection string
	op         string
	id         string
	payload    json.RawMessage

	// barrier is closed by the worker once every earlier operation was dispatched.
	barrier chan struct{}
}

type syncedCollection struct {
	name    string
	diff    func(prev, next *statedomain.AppState) ([]operation, error)
	replace func(state *statedomain.AppState, raw []byte) error
}

// syncedCollections lists the diff-synced collections in dispatch order. Expenses,
// outstanding balances and incomes go through their own endpoints.
var syncedCollections = []syncedCollection{
	synced(catalogdomain.CollectionDepartments,
		func(s *statedomain.AppState) *[]catalogdomain.Department { return &s.Departments },
		func(d *catalogdomain.Department, id string) { d.ID = id }),
	synced(catalogdomain.CollectionEmployees,
		func(s *statedomain.AppState) *[]catalogdomain.Employee { return &s.Employees },
		func(e *catalogdomain.Employee, id string) { e.ID = id }),
	synced(catalogdomain.CollectionExpenseGroups,
		func(s *statedomain.AppState) *[]catalogdomain.ExpenseGroup { return &s.ExpenseGroups },
		func(g *catalogdomain.ExpenseGroup, id string) { g.ID = id }),
	synced(catalogdomain.CollectionExpenseCategories,
		func(s *statedomain.AppState) *[]catalogdomain.ExpenseCategory { return &s.ExpenseCategories },
		func(c *catalogdomain.ExpenseCategory, id string) { c.ID = id }),
	synced(catalogdomain.CollectionIncomeServices,
		func(s *statedomain.AppState) *[]catalogdomain.IncomeService { return &s.IncomeServices },
		func(sv *catalogdomain.IncomeService, id string) { sv.ID = id }),
	synced(catalogdomain.CollectionTasks,
		func(s *statedomain.AppState) *[]catalogdomain.Task { return &s.Tasks },
		func(t *catalogdomain.Task, id string) { t.ID = id }),
}

func synced[T catalogdomain.Record](name string, field func(*statedomain.AppState) *[]T, setID func(*T, string)) syncedCollection {
	return syncedCollection{
		name: name,
		diff: func(prev, next *statedomain.AppState) ([]operation, error) {
			return collectionOps(name, *field(prev), *field(next))
		},
		replace: func(state *statedomain.AppState, raw []byte) error {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			for i := range items {
				if strings.TrimSpace(items[i].GetID()) == "" {
					setID(&items[i], NewID())
				}
			}
			*field(state) = items
			return nil
		},
	}
}

func collectionOps[T catalogdomain.Record](collection string, prev, next []T) ([]operation, error) {
	changed, removed := Diff(prev, next)
	ops := make([]operation, 0, len(changed)+len(removed))
	for _, item := range changed {
		payload, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%s: %w", collection, item.GetID(), err)
		}
		ops = append(ops, operation{collection: collection, op: OpUpsert, id: item.GetID(), payload: payload})
	}
	for _, item := range removed {
		ops = append(ops, operation{collection: collection, op: OpDelete, id: item.GetID()})
	}
	return ops, nil
}

func diffState(prev, next *statedomain.AppState) ([]operation, error) {
	var ops []operation
	for _, coll := range syncedCollections {
		collOps, err := coll.diff(prev, next)
		if err != nil {
			return nil, err
		}
		ops = append(ops, collOps...)
	}
	return ops, nil
}

// ReplaceCollection swaps one diff-synced collection of state for the JSON array in raw.
// Records without an id get a fresh client id.
func ReplaceCollection(state *statedomain.AppState, collection string, raw []byte) error {
	collection = strings.TrimSpace(collection)
	for _, coll := range syncedCollections {
		if coll.name == collection {
			return coll.replace(state, raw)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
}

// NewID returns a client-generated record id.
func NewID() string {
	return ulid.Make().String()
}
