package controller

import (
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
)

// EventController handles event and subevent management.
type EventController struct {
	eventService *service.EventService
	gate         *middleware.Gate
}

func NewEventController(g *gin.RouterGroup, eventService *service.EventService, gate *middleware.Gate) *EventController {
	a := &EventController{eventService: eventService, gate: gate}
	a.initRouter(g)
	return a
}

func (a *EventController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/events")

	g.GET("/list", a.gate.Require(service.ModuleEvents, service.ActionRead), a.getEvents)
	g.GET("/get/:eventId", a.gate.Require(service.ModuleEvents, service.ActionRead), a.getEvent)
	g.GET("/:eventId/subevents", a.gate.Require(service.ModuleEvents, service.ActionRead), a.getSubevents)

	g.POST("/add", a.gate.Require(service.ModuleEvents, service.ActionCreate), a.addEvent)
	g.POST("/update/:eventId", a.gate.Require(service.ModuleEvents, service.ActionUpdate), a.updateEvent)
	g.POST("/del/:eventId", a.gate.Require(service.ModuleEvents, service.ActionDelete), a.delEvent)
	g.POST("/:eventId/subevents/add", a.gate.Require(service.ModuleEvents, service.ActionCreate), a.addSubevent)
}

// getEvents lists the events the caller may see. Restricted callers get
// only their allow-list; an empty allow-list is an empty list, not an
// error.
func (a *EventController) getEvents(c *gin.Context) {
	scope, _ := middleware.EventScope(c)
	events, err := a.eventService.ListEvents(middleware.IsUnrestricted(c), scope)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, events)
}

func (a *EventController) getEvent(c *gin.Context) {
	id, err := pathId(c, "eventId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	event, err := a.eventService.GetEvent(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, event)
}

func (a *EventController) addEvent(c *gin.Context) {
	event := &model.Event{}
	if err := c.ShouldBind(event); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.eventService.AddEvent(event); err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, event)
}

func (a *EventController) updateEvent(c *gin.Context) {
	id, err := pathId(c, "eventId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	event := &model.Event{}
	if err := c.ShouldBind(event); err != nil {
		bindErr(c, err)
		return
	}
	event.Id = id
	if err := a.eventService.UpdateEvent(event); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "event updated")
}

func (a *EventController) delEvent(c *gin.Context) {
	id, err := pathId(c, "eventId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	if err := a.eventService.DeleteEvent(id); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "event deleted")
}

func (a *EventController) getSubevents(c *gin.Context) {
	id, err := pathId(c, "eventId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	subevents, err := a.eventService.ListSubevents(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, subevents)
}

func (a *EventController) addSubevent(c *gin.Context) {
	id, err := pathId(c, "eventId")
	if err != nil {
		jsonErr(c, err)
		return
	}
	subevent := &model.Subevent{}
	if err := c.ShouldBind(subevent); err != nil {
		bindErr(c, err)
		return
	}
	subevent.EventId = id
	if err := a.eventService.AddSubevent(subevent); err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, subevent)
}
