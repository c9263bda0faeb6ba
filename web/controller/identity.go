package controller

import (
	"github.com/eventops/credenza/web/entity"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
)

// IdentityController manages identity accounts and role assignments.
// These operations carry no event scope, so only unrestricted identities
// pass the gate for the mutating routes.
type IdentityController struct {
	authService *service.AuthService
	gate        *middleware.Gate
}

func NewIdentityController(g *gin.RouterGroup, authService *service.AuthService, gate *middleware.Gate) *IdentityController {
	a := &IdentityController{authService: authService, gate: gate}
	a.initRouter(g)
	return a
}

func (a *IdentityController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/identities")

	g.POST("/add", a.gate.Require(service.ModuleGrants, service.ActionCreate), a.addIdentity)
	g.POST("/:id/roles/add", a.gate.Require(service.ModuleGrants, service.ActionCreate), a.assignRole)
	g.POST("/:id/password", a.gate.Require(service.ModuleGrants, service.ActionUpdate), a.updatePassword)
	g.GET("/get/:id", a.gate.Require(service.ModuleGrants, service.ActionRead), a.getIdentity)
}

func (a *IdentityController) addIdentity(c *gin.Context) {
	var form entity.IdentityForm
	if err := c.ShouldBind(&form); err != nil {
		bindErr(c, err)
		return
	}
	identity, err := a.authService.AddIdentity(form.Username, form.Password)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, identity)
}

func (a *IdentityController) assignRole(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var form entity.RoleForm
	if err := c.ShouldBind(&form); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.authService.AssignRole(id, form.Role); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "role assigned")
}

func (a *IdentityController) updatePassword(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var form struct {
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&form); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.authService.UpdatePassword(id, form.Password); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "password updated")
}

func (a *IdentityController) getIdentity(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	identity, err := a.authService.GetIdentity(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, identity)
}
