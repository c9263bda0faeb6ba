// Package middleware provides gin middleware for credenza, most notably
// the authorization gate run in front of every scoped operation.
package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/web/service"
	"github.com/eventops/credenza/web/session"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxActorId      = "gate.actorId"
	ctxUnrestricted = "gate.unrestricted"
	ctxEventScope   = "gate.eventScope"
)

// actorClaimAliases are the claim names an actor id has historically been
// issued under. The first one that parses to an integer wins.
var actorClaimAliases = []string{"id", "userId", "user_id", "identityId", "sub"}

// Gate decides, per request, whether the acting identity may touch the
// targeted event's module. It resolves the actor from the session or a
// bearer token, the event id from path, query or body (in that priority),
// and asks the permission resolver.
type Gate struct {
	permissions *service.PermissionService
	tokenSecret string
}

func NewGate(permissions *service.PermissionService, tokenSecret string) *Gate {
	return &Gate{permissions: permissions, tokenSecret: tokenSecret}
}

// Require returns middleware enforcing module/action on the request.
// Denied checks answer 403 naming the failed module/action; an
// unresolvable actor answers 401; resolver storage failures answer 500.
// For reads without a target event the resolved event allow-list is
// attached to the context instead (an empty list means the endpoint must
// return an empty result set).
func (g *Gate) Require(module string, action service.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorId, ok := g.actorId(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "not authenticated")
			return
		}

		eventId := eventIdFromRequest(c)

		decision, err := g.permissions.Resolve(actorId, eventId, module, action)
		if err != nil {
			logger.Error("permission resolution failed:", err)
			abortJSON(c, http.StatusInternalServerError, "permission resolution failed")
			return
		}
		if !decision.Allowed {
			abortJSON(c, http.StatusForbidden,
				"permission denied for module "+module+" action "+string(action))
			return
		}

		c.Set(ctxActorId, actorId)
		c.Set(ctxUnrestricted, decision.Unrestricted)
		if eventId == nil && !decision.Unrestricted {
			c.Set(ctxEventScope, decision.EventIds)
		}
		c.Next()
	}
}

// RequireLogin only authenticates the actor, without a module check.
func (g *Gate) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorId, ok := g.actorId(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		c.Set(ctxActorId, actorId)
		c.Next()
	}
}

// actorId resolves the acting identity: session login first, then bearer
// token claims under any of the historical aliases.
func (g *Gate) actorId(c *gin.Context) (int, bool) {
	if identity := session.GetLoginIdentity(c); identity != nil {
		return identity.Id, true
	}
	return g.actorFromToken(c)
}

func (g *Gate) actorFromToken(c *gin.Context) (int, bool) {
	if g.tokenSecret == "" {
		return 0, false
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return 0, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(g.tokenSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	for _, alias := range actorClaimAliases {
		if id, ok := claimToInt(claims[alias]); ok {
			return id, true
		}
	}
	return 0, false
}

func claimToInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), v > 0
	case int:
		return v, v > 0
	case string:
		id, err := strconv.Atoi(v)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

// eventIdFromRequest extracts the target event id with fixed priority:
// path parameter, then query, then JSON body. Nil when the request names
// no event.
func eventIdFromRequest(c *gin.Context) *int {
	if raw := c.Param("eventId"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return &id
		}
	}
	for _, key := range []string{"eventId", "event_id"} {
		if raw := c.Query(key); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil && id > 0 {
				return &id
			}
		}
	}
	return eventIdFromBody(c)
}

// eventIdFromBody peeks at a JSON body for an event id, restoring the body
// so binding downstream still works.
func eventIdFromBody(c *gin.Context) *int {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "json") {
		return nil
	}
	data, err := c.GetRawData()
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(data))

	body := map[string]any{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	for _, key := range []string{"eventId", "event_id"} {
		if id, ok := claimToInt(body[key]); ok {
			return &id
		}
	}
	return nil
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "msg": msg})
}

// ActorId returns the authenticated actor id the gate stored.
func ActorId(c *gin.Context) int {
	return c.GetInt(ctxActorId)
}

// IsUnrestricted reports whether the gate marked the actor as exempt from
// event scoping; list endpoints then skip allow-list filtering.
func IsUnrestricted(c *gin.Context) bool {
	return c.GetBool(ctxUnrestricted)
}

// EventScope returns the allow-list of event ids for reads without a
// target event. The second result is false for unrestricted actors.
func EventScope(c *gin.Context) ([]int, bool) {
	value, exists := c.Get(ctxEventScope)
	if !exists {
		return nil, false
	}
	scope, ok := value.([]int)
	return scope, ok
}
