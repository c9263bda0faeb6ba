package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/eventops/credenza/database"
	"github.com/eventops/credenza/database/model"
	"github.com/eventops/credenza/web/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const testTokenSecret = "gate-test-secret"

func setupGateRouter(t *testing.T) (*gin.Engine, *Gate, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitDB(filepath.Join(t.TempDir(), "gate.db"))
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, database.CloseDB(db))
	})

	permissions := service.NewPermissionService(db, 0, nil)
	gate := NewGate(permissions, testTokenSecret)
	return gin.New(), gate, db
}

func createGateIdentity(t *testing.T, db *gorm.DB, username string) *model.Identity {
	t.Helper()
	identity := &model.Identity{Username: username, PasswordHash: "x"}
	assert.NoError(t, db.Create(identity).Error)
	return identity
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testTokenSecret))
	assert.NoError(t, err)
	return token
}

func grantAccess(t *testing.T, db *gorm.DB, identityId, eventId int, module string, read, update bool) {
	t.Helper()
	assert.NoError(t, db.Create(&model.EventGrant{
		IdentityId: identityId,
		EventId:    eventId,
		Module:     module,
		CanRead:    read,
		CanUpdate:  update,
	}).Error)
}

func TestGateRejectsAnonymous(t *testing.T) {
	router, gate, _ := setupGateRouter(t)
	router.GET("/things", gate.Require(service.ModuleEvents, service.ActionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// garbage bearer tokens are anonymous too
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/things", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateClaimAliases(t *testing.T) {
	router, gate, db := setupGateRouter(t)
	identity := createGateIdentity(t, db, "scanner")
	grantAccess(t, db, identity.Id, 3, service.ModuleAccreditation, true, false)

	var seenActor int
	router.GET("/scan/:eventId", gate.Require(service.ModuleAccreditation, service.ActionRead), func(c *gin.Context) {
		seenActor = ActorId(c)
		c.Status(http.StatusOK)
	})

	for _, alias := range []string{"id", "userId", "user_id", "identityId", "sub"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/scan/3", nil)
		var claims jwt.MapClaims
		if alias == "sub" {
			// registered claims are strings on the wire
			claims = jwt.MapClaims{alias: "2"}
		} else {
			claims = jwt.MapClaims{alias: identity.Id}
		}
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "alias %s", alias)
		assert.Equal(t, identity.Id, seenActor, "alias %s", alias)
	}
}

func TestGateDeniesOutsideGrant(t *testing.T) {
	router, gate, db := setupGateRouter(t)
	identity := createGateIdentity(t, db, "limited")
	grantAccess(t, db, identity.Id, 3, service.ModuleEvents, true, true)

	router.GET("/events/:eventId", gate.Require(service.ModuleEvents, service.ActionRead), okHandler)
	router.POST("/events/:eventId", gate.Require(service.ModuleEvents, service.ActionDelete), okHandler)

	token := signToken(t, jwt.MapClaims{"id": identity.Id})

	// granted event, granted action
	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodGet, "/events/3", token, nil))
	// other event
	assert.Equal(t, http.StatusForbidden, doGateRequest(router, http.MethodGet, "/events/8", token, nil))
	// granted event, action the grant does not carry
	assert.Equal(t, http.StatusForbidden, doGateRequest(router, http.MethodPost, "/events/3", token, nil))
}

func TestGateEventIdPriority(t *testing.T) {
	router, gate, db := setupGateRouter(t)
	identity := createGateIdentity(t, db, "priority")
	grantAccess(t, db, identity.Id, 5, service.ModuleCampaigns, true, true)
	token := signToken(t, jwt.MapClaims{"id": identity.Id})

	router.POST("/fixed/:eventId", gate.Require(service.ModuleCampaigns, service.ActionUpdate), okHandler)
	router.POST("/loose", gate.Require(service.ModuleCampaigns, service.ActionUpdate), okHandler)

	// path parameter wins over a query naming a different event
	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodPost, "/fixed/5?eventId=999", token, nil))
	assert.Equal(t, http.StatusForbidden, doGateRequest(router, http.MethodPost, "/fixed/999?eventId=5", token, nil))

	// query wins over the body
	body := []byte(`{"eventId": 999}`)
	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodPost, "/loose?eventId=5", token, body))

	// body alone still scopes the check
	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodPost, "/loose", token, []byte(`{"eventId": 5}`)))
	assert.Equal(t, http.StatusForbidden, doGateRequest(router, http.MethodPost, "/loose", token, []byte(`{"event_id": 999}`)))
}

func TestGateBodyPeekPreservesBody(t *testing.T) {
	router, gate, db := setupGateRouter(t)
	identity := createGateIdentity(t, db, "binder")
	grantAccess(t, db, identity.Id, 5, service.ModuleCampaigns, true, true)
	token := signToken(t, jwt.MapClaims{"id": identity.Id})

	type payload struct {
		EventId int    `json:"eventId"`
		Name    string `json:"name"`
	}
	var bound payload
	router.POST("/bind", gate.Require(service.ModuleCampaigns, service.ActionUpdate), func(c *gin.Context) {
		assert.NoError(t, c.ShouldBindJSON(&bound))
		c.Status(http.StatusOK)
	})

	status := doGateRequest(router, http.MethodPost, "/bind", token, []byte(`{"eventId": 5, "name": "Expo"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, bound.EventId)
	assert.Equal(t, "Expo", bound.Name)
}

func TestGateReadWithoutEventAttachesScope(t *testing.T) {
	router, gate, db := setupGateRouter(t)
	identity := createGateIdentity(t, db, "lister")
	grantAccess(t, db, identity.Id, 4, service.ModuleEvents, true, false)
	grantAccess(t, db, identity.Id, 9, service.ModuleEvents, true, false)
	stranger := createGateIdentity(t, db, "stranger")
	token := signToken(t, jwt.MapClaims{"id": identity.Id})

	var scope []int
	var scoped bool
	router.GET("/list", gate.Require(service.ModuleEvents, service.ActionRead), func(c *gin.Context) {
		scope, scoped = EventScope(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodGet, "/list", token, nil))
	assert.True(t, scoped)
	assert.ElementsMatch(t, []int{4, 9}, scope)

	// no grants at all: allowed, but the scope is empty
	strangerToken := signToken(t, jwt.MapClaims{"id": stranger.Id})
	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodGet, "/list", strangerToken, nil))
	assert.True(t, scoped)
	assert.Empty(t, scope)
}

func TestGateUnrestrictedSkipsScope(t *testing.T) {
	router, gate, _ := setupGateRouter(t)
	// identity 1 is the seeded admin carrying the unrestricted role
	token := signToken(t, jwt.MapClaims{"id": 1})

	var unrestricted, scoped bool
	router.GET("/list", gate.Require(service.ModuleEvents, service.ActionRead), func(c *gin.Context) {
		unrestricted = IsUnrestricted(c)
		_, scoped = EventScope(c)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, doGateRequest(router, http.MethodGet, "/list", token, nil))
	assert.True(t, unrestricted)
	assert.False(t, scoped)
}

func okHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

func doGateRequest(router *gin.Engine, method, target, token string, body []byte) int {
	w := httptest.NewRecorder()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w.Code
}
