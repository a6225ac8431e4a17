package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusOK      = "ok"
	statusPaused  = "paused"
	statusResumed = "resumed"

	errGetStatus = "failed to load bridge status"
)

// logAndJSONError centralizes error logging and the error response body.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get bridge status
// @Description  Last-tick snapshot: outcome, sensor reading, setpoints, pause flag.
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/bridge/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.GetStatus(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "bridge_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Pause the control loop
// @Description  Ticks keep running but no setpoint writes happen until resume.
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/bridge/pause [post]
// @Security     BearerAuth
func (h *Handler) pauseBridge(c *gin.Context) {
	h.services.Pause(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": statusPaused})
}

// @Summary      Resume the control loop
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/bridge/resume [post]
// @Security     BearerAuth
func (h *Handler) resumeBridge(c *gin.Context) {
	h.services.Resume(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": statusResumed})
}
