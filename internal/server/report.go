package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	reportdomain "github.com/smallbiznis/bizledger/internal/report/domain"
)

func (s *Server) GetReport(c *gin.Context) {
	var filter reportdomain.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	ctx := c.Request.Context()
	var (
		resp any
		err  error
	)
	switch strings.TrimSpace(c.Param("name")) {
	case reportdomain.ReportRoster:
		resp, err = s.reportSvc.Roster(ctx)
	case reportdomain.ReportExpensesByEmployee:
		resp, err = s.reportSvc.ExpensesByEmployee(ctx, filter)
	case reportdomain.ReportExpensesByDepartment:
		resp, err = s.reportSvc.ExpensesByDepartment(ctx, filter)
	case reportdomain.ReportDashboard:
		resp, err = s.reportSvc.Dashboard(ctx)
	default:
		err = reportdomain.ErrUnknownReport
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportReport(c *gin.Context) {
	var filter reportdomain.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	file, err := s.reportSvc.Export(c.Request.Context(), strings.TrimSpace(c.Param("name")), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
