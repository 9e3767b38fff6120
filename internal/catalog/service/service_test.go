package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/catalog/repository"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(testNow),
		Repos: repository.Provide(conn),
	})
}

func TestUpsertAssignsIDAndUpdatesInPlace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, domain.CollectionDepartments, json.RawMessage(`{"name":" Operations "}`))
	require.NoError(t, err)
	dept := rec.(domain.Department)
	assert.NotEmpty(t, dept.ID)
	assert.Equal(t, "Operations", dept.Name)

	payload, _ := json.Marshal(domain.Department{ID: dept.ID, Name: "Ops"})
	_, err = svc.Upsert(ctx, domain.CollectionDepartments, payload)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Departments, 1)
	assert.Equal(t, "Ops", snap.Departments[0].Name)
}

func TestUpsertKeepsClientID(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Upsert(context.Background(), domain.CollectionIncomeServices,
		json.RawMessage(`{"id":"01HZX3J7Q2ZK9V1C4W6M8N0P2R","name":"Inspections"}`))
	require.NoError(t, err)
	assert.Equal(t, "01HZX3J7Q2ZK9V1C4W6M8N0P2R", rec.GetID())
}

func TestUpsertValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		collection string
		payload    string
		want       error
	}{
		{"unknown", `{}`, domain.ErrUnknownCollection},
		{domain.CollectionDepartments, `not json`, domain.ErrInvalidPayload},
		{domain.CollectionDepartments, `{"name":""}`, domain.ErrInvalidName},
		{domain.CollectionEmployees, `{"name":"Sara"}`, domain.ErrInvalidDepartment},
		{domain.CollectionEmployees, `{"name":"Sara","department_id":"d1","salary":"-1"}`, domain.ErrInvalidSalary},
		{domain.CollectionExpenseCategories, `{"name":"Fuel"}`, domain.ErrInvalidGroup},
		{domain.CollectionTasks, `{"address":""}`, domain.ErrInvalidAddress},
		{domain.CollectionTasks, `{"address":"12 King Rd","status":"paused"}`, domain.ErrInvalidStatus},
	}
	for _, tc := range cases {
		_, err := svc.Upsert(ctx, tc.collection, json.RawMessage(tc.payload))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s %s: expected %v, got %v", tc.collection, tc.payload, tc.want, err)
		}
	}
}

func TestTaskDefaults(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Upsert(context.Background(), domain.CollectionTasks, json.RawMessage(`{"address":"12 King Rd"}`))
	require.NoError(t, err)
	task := rec.(domain.Task)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.True(t, task.CreatedAt.Equal(testNow))
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, domain.CollectionExpenseGroups, json.RawMessage(`{"name":"Direct costs","is_cogs":true}`))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, domain.CollectionExpenseGroups, rec.GetID()))
	assert.ErrorIs(t, svc.Delete(ctx, domain.CollectionExpenseGroups, rec.GetID()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, domain.CollectionExpenseGroups, " "), domain.ErrInvalidID)
}

func TestActiveEmployees(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.CollectionEmployees, json.RawMessage(`{"id":"e1","name":"Ali","department_id":"d1","salary":4000,"is_active":true}`))
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, domain.CollectionEmployees, json.RawMessage(`{"id":"e2","name":"Omar","department_id":"d2","salary":3500,"is_active":false}`))
	require.NoError(t, err)

	active, err := svc.ActiveEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "e1", active[0].ID)
	assert.Equal(t, "4000", active[0].Salary.String())
}
