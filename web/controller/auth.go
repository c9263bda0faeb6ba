package controller

import (
	"net/http"
	"time"

	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/web/entity"
	"github.com/eventops/credenza/web/service"
	"github.com/eventops/credenza/web/session"

	"github.com/gin-gonic/gin"
)

// AuthController handles session login and logout.
type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(g *gin.RouterGroup, authService *service.AuthService) *AuthController {
	a := &AuthController{authService: authService}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)
	g.POST("/logout", a.logout)
}

func (a *AuthController) login(c *gin.Context) {
	var form entity.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "username and password are required")
		return
	}

	identity := a.authService.CheckIdentity(form.Username, form.Password, form.TwoFactorCode)
	if identity == nil {
		logger.Warningf("wrong login attempt for %q from %s at %v", form.Username, getRemoteIp(c), time.Now())
		pureJsonMsg(c, http.StatusUnauthorized, false, "invalid credentials")
		return
	}

	if err := session.SetLoginIdentity(c, identity); err != nil {
		logger.Warning("set login identity err:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "login failed")
		return
	}

	logger.Infof("%s logged in from %s", identity.Username, getRemoteIp(c))
	jsonObj(c, identity)
}

func (a *AuthController) logout(c *gin.Context) {
	if err := session.ClearSession(c); err != nil {
		logger.Warning("clear session err:", err)
	}
	jsonMsg(c, "logged out")
}
