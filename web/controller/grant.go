package controller

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
)

// GrantController manages the event grant rows the permission resolver
// reads.
type GrantController struct {
	grantService *service.GrantService
	gate         *middleware.Gate
}

func NewGrantController(g *gin.RouterGroup, grantService *service.GrantService, gate *middleware.Gate) *GrantController {
	a := &GrantController{grantService: grantService, gate: gate}
	a.initRouter(g)
	return a
}

func (a *GrantController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/grants")

	g.POST("/upsert", a.gate.Require(service.ModuleGrants, service.ActionCreate), a.upsertGrant)
	g.POST("/del/:id", a.gate.Require(service.ModuleGrants, service.ActionDelete), a.delGrant)
	g.GET("/identity/:identityId", a.gate.Require(service.ModuleGrants, service.ActionRead), a.getGrants)
}

// upsertGrant stores a grant; re-submitting the same
// (identity, event, module) key updates the flags in place.
func (a *GrantController) upsertGrant(c *gin.Context) {
	grant := &model.EventGrant{}
	if err := c.ShouldBind(grant); err != nil {
		bindErr(c, err)
		return
	}
	stored, err := a.grantService.Upsert(grant)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, stored)
}

func (a *GrantController) delGrant(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	if err := a.grantService.Delete(id); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "grant deleted")
}

func (a *GrantController) getGrants(c *gin.Context) {
	identityId, err := pathId(c, "identityId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	grants, err := a.grantService.ListByIdentity(identityId)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, grants)
}
