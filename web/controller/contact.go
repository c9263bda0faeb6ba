package controller

import (
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
)

// ContactController exposes the contact directory for operational staff.
// Contact writes happen through the registration paths; only lookup and
// explicit administrative deletion live here.
type ContactController struct {
	contactService *service.ContactService
	gate           *middleware.Gate
}

func NewContactController(g *gin.RouterGroup, contactService *service.ContactService, gate *middleware.Gate) *ContactController {
	a := &ContactController{contactService: contactService, gate: gate}
	a.initRouter(g)
	return a
}

func (a *ContactController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/contacts")

	g.GET("/list", a.gate.Require(service.ModuleContacts, service.ActionRead), a.getContacts)
	g.GET("/get/:id", a.gate.Require(service.ModuleContacts, service.ActionRead), a.getContact)
	g.GET("/byEmail", a.gate.Require(service.ModuleContacts, service.ActionRead), a.getByEmail)
	g.POST("/del/:id", a.gate.Require(service.ModuleContacts, service.ActionDelete), a.delContact)
}

func (a *ContactController) getContacts(c *gin.Context) {
	contacts, err := a.contactService.SearchContacts(c.Query("q"), 0)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, contacts)
}

func (a *ContactController) getContact(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	contact, err := a.contactService.GetContact(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, contact)
}

func (a *ContactController) getByEmail(c *gin.Context) {
	contact, err := a.contactService.FindByEmail(c.Query("email"))
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, contact)
}

func (a *ContactController) delContact(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	if err := a.contactService.DeleteContact(id); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "contact deleted")
}
