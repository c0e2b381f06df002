package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/services"
)

type treeResponse struct {
	Title  string                  `json:"title"`
	Totals services.EstimateTotals `json:"totals"`
	Tree   []*services.TreeNode    `json:"tree"`
}

// HandleEstimateTree returns the L1..L4 classification tree of an estimate
// with the amount of every folder.
func HandleEstimateTree(app *pocketbase.PocketBase, opts services.Options) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		est, _, err := loadEstimate(app, opts, estimateID)
		if err != nil {
			log.Warn("tree: load estimate", "id", estimateID, "err", err)
			return e.String(http.StatusNotFound, "Estimate not found")
		}

		return e.JSON(http.StatusOK, treeResponse{
			Title:  est.Info.ProjectName,
			Totals: est.Totals,
			Tree:   services.BuildTree(est.Roots),
		})
	}
}
