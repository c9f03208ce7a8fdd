package handler

import (
	"net/http"
	"time"

	"taskdesk/internal/middleware"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
	"taskdesk/internal/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	provider repository.Provider
	now      func() time.Time
}

func NewStatsHandler(provider repository.Provider, now func() time.Time) *StatsHandler {
	return &StatsHandler{provider: provider, now: now}
}

// ImportanceCountsResponse holds per-level task counts
type ImportanceCountsResponse struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// StatsResponse is the summary of the caller's tasks
type StatsResponse struct {
	Total                int                      `json:"total"`
	Completed            int                      `json:"completed"`
	Pending              int                      `json:"pending"`
	CompletionPercentage int                      `json:"completion_percentage"`
	ByImportance         ImportanceCountsResponse `json:"by_importance"`
	Overdue              int                      `json:"overdue"`
	DueToday             int                      `json:"due_today"`
}

func newStatsResponse(s stats.Summary) StatsResponse {
	return StatsResponse{
		Total:                s.Total,
		Completed:            s.Completed,
		Pending:              s.Pending,
		CompletionPercentage: s.CompletionPercentage,
		ByImportance: ImportanceCountsResponse{
			High:   s.ByImportance.High,
			Medium: s.ByImportance.Medium,
			Low:    s.ByImportance.Low,
		},
		Overdue:  s.Overdue,
		DueToday: s.DueToday,
	}
}

// Get godoc
// @Summary      Task statistics
// @Tags         Stats
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Failure      503  {object}  map[string]string
// @Router       /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	svc := service.NewTaskService(h.provider.Store(middleware.SessionID(c)), h.now)
	summary, err := svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "compute statistics")
		return
	}
	c.JSON(http.StatusOK, newStatsResponse(summary))
}
