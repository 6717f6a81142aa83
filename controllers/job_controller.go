package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/safespace/safespace_backend/scheduler"
)

// JobController exposes the registered sweeps for on-demand invocation.
type JobController struct {
	sched *scheduler.Scheduler
}

func NewJobController(sched *scheduler.Scheduler) *JobController {
	return &JobController{sched: sched}
}

// RunJobRequest is the body of POST /jobs.
type RunJobRequest struct {
	Name string `json:"name" validate:"required"`
}

// List returns the registered job names.
func (jc *JobController) List(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": jc.sched.Names(),
	})
}

// Run executes one named job immediately and reports the outcome.
func (jc *JobController) Run(c echo.Context) error {
	var req RunJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "name is required",
		})
	}

	name := strings.TrimSpace(req.Name)
	if !jc.sched.Has(name) {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"message": "unknown job",
			"jobs":    jc.sched.Names(),
		})
	}

	if err := jc.sched.RunNow(c.Request().Context(), name); err != nil {
		log.Printf("manual run of job %q failed: %v", name, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "job failed",
			"job":     name,
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"job":    name,
	})
}
