package controller

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
)

// CampaignController handles campaigns, entry types and form schemas.
// Campaign-scoped routes expect the owning eventId in the query or body;
// the gate resolves permissions against it.
type CampaignController struct {
	campaignService *service.CampaignService
	gate            *middleware.Gate
}

func NewCampaignController(g *gin.RouterGroup, campaignService *service.CampaignService, gate *middleware.Gate) *CampaignController {
	a := &CampaignController{campaignService: campaignService, gate: gate}
	a.initRouter(g)
	return a
}

func (a *CampaignController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/campaigns")

	g.GET("/list", a.gate.Require(service.ModuleCampaigns, service.ActionRead), a.getCampaigns)
	g.GET("/get/:id", a.gate.Require(service.ModuleCampaigns, service.ActionRead), a.getCampaign)
	g.GET("/:id/entryTypes", a.gate.Require(service.ModuleCampaigns, service.ActionRead), a.getEntryTypes)
	g.GET("/:id/fields", a.gate.Require(service.ModuleForms, service.ActionRead), a.getFormFields)

	g.POST("/add", a.gate.Require(service.ModuleCampaigns, service.ActionCreate), a.addCampaign)
	g.POST("/update/:id", a.gate.Require(service.ModuleCampaigns, service.ActionUpdate), a.updateCampaign)
	g.POST("/:id/entryTypes/add", a.gate.Require(service.ModuleCampaigns, service.ActionCreate), a.addEntryType)
	g.POST("/:id/fields/add", a.gate.Require(service.ModuleForms, service.ActionCreate), a.addFormField)
}

func (a *CampaignController) getCampaigns(c *gin.Context) {
	scope, _ := middleware.EventScope(c)
	campaigns, err := a.campaignService.ListCampaigns(middleware.IsUnrestricted(c), scope)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, campaigns)
}

func (a *CampaignController) getCampaign(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	campaign, err := a.campaignService.GetCampaign(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, campaign)
}

func (a *CampaignController) addCampaign(c *gin.Context) {
	campaign := &model.Campaign{}
	if err := c.ShouldBind(campaign); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.campaignService.AddCampaign(campaign); err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, campaign)
}

func (a *CampaignController) updateCampaign(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	campaign := &model.Campaign{}
	if err := c.ShouldBind(campaign); err != nil {
		bindErr(c, err)
		return
	}
	campaign.Id = id
	if err := a.campaignService.UpdateCampaign(campaign); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "campaign updated")
}

func (a *CampaignController) getEntryTypes(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	entryTypes, err := a.campaignService.ListEntryTypes(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, entryTypes)
}

func (a *CampaignController) addEntryType(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	entryType := &model.EntryType{}
	if err := c.ShouldBind(entryType); err != nil {
		bindErr(c, err)
		return
	}
	entryType.CampaignId = id
	if err := a.campaignService.AddEntryType(entryType); err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, entryType)
}

func (a *CampaignController) getFormFields(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	fields, err := a.campaignService.ListFormFields(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, fields)
}

func (a *CampaignController) addFormField(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	field := &model.FormField{}
	if err := c.ShouldBind(field); err != nil {
		bindErr(c, err)
		return
	}
	field.CampaignId = id
	if err := a.campaignService.AddFormField(field); err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, field)
}
