package controller

import (
	"strconv"

	"github.com/eventops/credenza/config"
	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/web/middleware"

	"github.com/gin-gonic/gin"
)

// ServerController exposes operational endpoints: version and the
// buffered log tail.
type ServerController struct {
	gate *middleware.Gate
}

func NewServerController(g *gin.RouterGroup, gate *middleware.Gate) *ServerController {
	a := &ServerController{gate: gate}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/server")

	g.GET("/version", a.getVersion)
	g.GET("/logs", a.gate.RequireLogin(), a.getLogs)
}

func (a *ServerController) getVersion(c *gin.Context) {
	jsonObj(c, config.GetVersion())
}

func (a *ServerController) getLogs(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 {
		count = 100
	}
	level := c.DefaultQuery("level", "INFO")
	jsonObj(c, logger.GetLogs(count, level))
}
