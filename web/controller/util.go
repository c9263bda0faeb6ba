// Package controller provides the HTTP handlers for the credenza panel
// API: authentication, events, campaigns, grants, registration and
// check-in.
package controller

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/eventops/credenza/logger"
	"github.com/eventops/credenza/util/common"
	"github.com/eventops/credenza/web/entity"

	"github.com/gin-gonic/gin"
)

// getRemoteIp extracts the real IP address from the request headers or
// remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		return value
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// jsonMsg sends a success envelope with a message.
func jsonMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, entity.Msg{Success: true, Msg: msg})
}

// jsonObj sends a success envelope with an object.
func jsonObj(c *gin.Context, obj any) {
	c.JSON(http.StatusOK, entity.Msg{Success: true, Obj: obj})
}

// jsonErr translates an error into the stable external shape. This is the
// only place internal errors become HTTP responses; storage error text is
// logged here and never leaks to clients.
func jsonErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch common.KindOf(err) {
	case common.KindUnauthenticated:
		status = http.StatusUnauthorized
		msg = err.Error()
	case common.KindPermissionDenied:
		status = http.StatusForbidden
		msg = err.Error()
	case common.KindValidation:
		status = http.StatusBadRequest
		msg = err.Error()
		if row := common.RowOf(err); row > 0 {
			c.JSON(status, gin.H{"success": false, "msg": msg, "row": row})
			return
		}
	case common.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case common.KindConflict:
		status = http.StatusConflict
		msg = err.Error()
	case common.KindTransaction:
		msg = err.Error()
	default:
		logger.Warning("unhandled error:", err)
	}

	c.JSON(status, entity.Msg{Success: false, Msg: msg})
}

// pureJsonMsg sends a bare envelope with a custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// bindErr reports a request-binding failure as a validation error.
func bindErr(c *gin.Context, err error) {
	jsonErr(c, common.NewValidation("invalid request: "+err.Error()))
}

// pathId parses a named integer path parameter.
func pathId(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, common.NewValidation(fmt.Sprintf("invalid %s: %q", name, c.Param(name)))
	}
	return id, nil
}
