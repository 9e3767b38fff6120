package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

const maxCatalogPayload = 1 << 20

type settleRequest struct {
	AmountToPay decimal.Decimal `json:"amount_to_pay"`
}

func (s *Server) GetState(c *gin.Context) {
	state, err := s.stateSvc.GetState(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if principal, ok := principalFromContext(c); ok {
		state.Session.UserID = principal.UserID
		state.Session.Name = principal.Name
		state.Session.Email = principal.Email
		state.Session.Role = string(principal.Role)
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

func (s *Server) UpsertCatalogRecord(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCatalogPayload))
	if err != nil || !json.Valid(body) {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.catalogSvc.Upsert(c.Request.Context(), strings.TrimSpace(c.Param("collection")), body)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) DeleteCatalogRecord(c *gin.Context) {
	err := s.catalogSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("collection")), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListExpenses(c *gin.Context) {
	var query struct {
		pagination.Pagination
		DepartmentID string `form:"department_id"`
		EmployeeID   string `form:"employee_id"`
		CategoryID   string `form:"category_id"`
		DateFrom     string `form:"date_from"`
		DateTo       string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.expenseSvc.List(c.Request.Context(), expensedomain.ListExpenseRequest{
		PageToken:    query.PageToken,
		PageSize:     clampPageSize(query.PageSize),
		DepartmentID: strings.TrimSpace(query.DepartmentID),
		EmployeeID:   strings.TrimSpace(query.EmployeeID),
		CategoryID:   strings.TrimSpace(query.CategoryID),
		DateFrom:     strings.TrimSpace(query.DateFrom),
		DateTo:       strings.TrimSpace(query.DateTo),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateExpense(c *gin.Context) {
	var req expensedomain.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.expenseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeleteExpense(c *gin.Context) {
	if err := s.expenseSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListOutstanding(c *gin.Context) {
	var query struct {
		pagination.Pagination
		DepartmentID string `form:"department_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.expenseSvc.ListOutstanding(c.Request.Context(), expensedomain.ListOutstandingRequest{
		PageToken:    query.PageToken,
		PageSize:     clampPageSize(query.PageSize),
		DepartmentID: strings.TrimSpace(query.DepartmentID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SettleOutstanding(c *gin.Context) {
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.expenseSvc.Settle(c.Request.Context(), expensedomain.SettleRequest{
		OutstandingID: strings.TrimSpace(c.Param("id")),
		AmountToPay:   req.AmountToPay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListIncomes(c *gin.Context) {
	var query struct {
		ServiceID string `form:"service_id"`
		DateFrom  string `form:"date_from"`
		DateTo    string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.incomeSvc.List(c.Request.Context(), incomedomain.ListIncomeRequest{
		ServiceID: strings.TrimSpace(query.ServiceID),
		DateFrom:  strings.TrimSpace(query.DateFrom),
		DateTo:    strings.TrimSpace(query.DateTo),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetIncome(c *gin.Context) {
	resp, err := s.incomeSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertIncome(c *gin.Context) {
	var req incomedomain.UpsertIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.incomeSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteIncome(c *gin.Context) {
	if err := s.incomeSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetIncomeSummary(c *gin.Context) {
	resp, err := s.incomeSvc.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func clampPageSize(size int) int32 {
	switch {
	case size <= 0:
		return pagination.DefaultPageSize
	case size > pagination.MaxPageSize:
		return pagination.MaxPageSize
	default:
		return int32(size)
	}
}
