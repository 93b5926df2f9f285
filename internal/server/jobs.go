package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

const defaultJobsLimit = 20

func (s *Server) handleListJobs(c *gin.Context) {
	limit := defaultJobsLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(c, common.NewAppError("INVALID_INPUT", "limit must be a positive integer", common.ErrInvalidInput))
			return
		}
		limit = min(n, s.cfg.JobsPageLimit)
	}

	jobs, err := s.jobs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) handleGetJob(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("id"))
	if err := common.NewValidator().Field("id", raw, common.Required, common.UUID).Error(); err != nil {
		s.writeError(c, err)
		return
	}
	id := uuid.MustParse(raw)

	job, err := s.jobs.Get(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
