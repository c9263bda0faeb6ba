package controller

import (
	"net/http"

	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/web/entity"
	"github.com/eventops/credenza/web/middleware"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// RegistrationController handles door registration, bulk import,
// enrollment status changes, badge check-in and the attendance dashboard.
type RegistrationController struct {
	doorService       *service.DoorService
	importService     *service.BulkImportService
	enrollmentService *service.EnrollmentService
	gate              *middleware.Gate
}

func NewRegistrationController(g *gin.RouterGroup, door *service.DoorService, imports *service.BulkImportService, enrollments *service.EnrollmentService, gate *middleware.Gate) *RegistrationController {
	a := &RegistrationController{
		doorService:       door,
		importService:     imports,
		enrollmentService: enrollments,
		gate:              gate,
	}
	a.initRouter(g)
	return a
}

func (a *RegistrationController) initRouter(g *gin.RouterGroup) {
	g.POST("/campaigns/:id/register", a.gate.Require(service.ModuleAccreditation, service.ActionCreate), a.register)
	g.POST("/campaigns/:id/import", a.gate.Require(service.ModuleContacts, service.ActionCreate), a.importRows)
	g.GET("/campaigns/:id/enrollments", a.gate.Require(service.ModuleAccreditation, service.ActionRead), a.getEnrollments)
	g.GET("/campaigns/:id/attendance", a.gate.Require(service.ModuleAccreditation, service.ActionRead), a.getAttendance)

	g.POST("/enrollments/:id/status", a.gate.Require(service.ModuleAccreditation, service.ActionUpdate), a.setStatus)
	g.POST("/enrollments/:id/responses", a.gate.Require(service.ModuleAccreditation, service.ActionUpdate), a.saveResponses)
	g.POST("/enrollments/:id/del", a.gate.Require(service.ModuleAccreditation, service.ActionDelete), a.delEnrollment)
	g.GET("/enrollments/:id", a.gate.Require(service.ModuleAccreditation, service.ActionRead), a.getEnrollment)
	g.GET("/enrollments/:id/badge.png", a.gate.Require(service.ModuleAccreditation, service.ActionRead), a.getBadge)

	g.POST("/checkin/:badgeCode", a.gate.Require(service.ModuleAccreditation, service.ActionUpdate), a.checkIn)
}

// register handles a walk-up guest at the door.
func (a *RegistrationController) register(c *gin.Context) {
	campaignId, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var request service.DoorRegistration
	if err := c.ShouldBindJSON(&request); err != nil {
		bindErr(c, err)
		return
	}
	result, err := a.doorService.Register(campaignId, request)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, result)
}

// importRows runs a bulk guest-list import. All rows commit or none do;
// failures name the spreadsheet row to fix.
func (a *RegistrationController) importRows(c *gin.Context) {
	campaignId, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var request entity.ImportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		bindErr(c, err)
		return
	}
	processed, err := a.importService.Import(campaignId, request.Rows)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, entity.ImportResult{RowsProcessed: processed})
}

func (a *RegistrationController) getEnrollments(c *gin.Context) {
	campaignId, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	enrollments, err := a.enrollmentService.ListByCampaign(campaignId)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, enrollments)
}

func (a *RegistrationController) getAttendance(c *gin.Context) {
	campaignId, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	counts, err := a.enrollmentService.CountByStatus(campaignId)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, counts)
}

func (a *RegistrationController) getEnrollment(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	enrollment, err := a.enrollmentService.GetEnrollment(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, enrollment)
}

func (a *RegistrationController) setStatus(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var form entity.StatusForm
	if err := c.ShouldBind(&form); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.enrollmentService.SetAttendanceStatus(id, model.AttendanceStatus(form.Status)); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "status updated")
}

func (a *RegistrationController) saveResponses(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	var form entity.ResponsesForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindErr(c, err)
		return
	}
	if err := a.enrollmentService.SaveFormResponses(id, form.Answers); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "responses saved")
}

func (a *RegistrationController) delEnrollment(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	if err := a.enrollmentService.DeleteEnrollment(id); err != nil {
		jsonErr(c, err)
		return
	}
	jsonMsg(c, "enrollment deleted")
}

// checkIn marks a badge's enrollment as attended. Scanning the same badge
// twice answers success both times; the second scan reports it was
// already checked in.
func (a *RegistrationController) checkIn(c *gin.Context) {
	badgeCode := c.Param("badgeCode")
	enrollment, alreadyAttended, err := a.enrollmentService.CheckIn(badgeCode)
	if err != nil {
		jsonErr(c, err)
		return
	}
	jsonObj(c, gin.H{
		"enrollment":      enrollment,
		"alreadyAttended": alreadyAttended,
	})
}

// getBadge renders the enrollment's badge code as a QR PNG for printed
// credentials.
func (a *RegistrationController) getBadge(c *gin.Context) {
	id, err := pathId(c, "id")
	if err != nil {
		jsonErr(c, err)
		return
	}
	enrollment, err := a.enrollmentService.GetEnrollment(id)
	if err != nil {
		jsonErr(c, err)
		return
	}
	png, err := qrcode.Encode(enrollment.BadgeCode, qrcode.Medium, 256)
	if err != nil {
		jsonErr(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
