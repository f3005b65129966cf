package admin

import (
	"net/http"
	"strconv"

	apperrors "github.com/booktime/booktime/internal/errors"
	"github.com/booktime/booktime/internal/middleware"
	"github.com/gin-gonic/gin"
)

const importRunsShown = 50

type importRunAdmin struct {
	svc  Services
	site *Site
}

// list shows the most recent import runs first
// GET /<site>/import-runs/
func (ir *importRunAdmin) list(c *gin.Context) {
	runs, err := ir.svc.Imports.RecentRuns(importRunsShown)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list import runs for admin", err)
		apperrors.InternalError(c, "")
		return
	}

	rows := make([]Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, Row{
			ID: run.ID,
			Cells: []interface{}{
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Source,
				strconv.Itoa(run.ProductsProcessed) + " (" + strconv.Itoa(run.ProductsCreated) + " new)",
				strconv.Itoa(run.TagsProcessed) + " (" + strconv.Itoa(run.TagsCreated) + " new)",
				strconv.Itoa(run.ImagesProcessed),
				strconv.Itoa(len(run.Warnings)),
			},
		})
	}

	render(c, ir.site, http.StatusOK, "admin/list.html", gin.H{
		"model":   ir.site.model(ModelImportRuns),
		"columns": []string{"Started", "Source", "Products", "Tags", "Images", "Warnings"},
		"rows":    rows,
		"count":   len(runs),
	})
}
