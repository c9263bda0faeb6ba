// Package entity defines the request/response shapes used by the web
// layer.
package entity

import "github.com/eventops/credenza/web/service"

// Msg is the standard API response envelope.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// LoginForm is the session login request.
type LoginForm struct {
	Username      string `json:"username" form:"username" binding:"required"`
	Password      string `json:"password" form:"password" binding:"required"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// StatusForm moves one enrollment to a new attendance status.
type StatusForm struct {
	Status string `json:"status" form:"status" binding:"required"`
}

// ImportRequest is a bulk import: ordered header-keyed rows produced by an
// external spreadsheet parser.
type ImportRequest struct {
	Rows []map[string]string `json:"rows" binding:"required"`
}

// ImportResult is the success shape of a bulk import.
type ImportResult struct {
	RowsProcessed int `json:"rowsProcessed"`
}

// RoleForm attaches a named role to an identity.
type RoleForm struct {
	Role string `json:"role" form:"role" binding:"required"`
}

// IdentityForm creates a new identity.
type IdentityForm struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// ResponsesForm upserts custom-field answers for an enrollment.
type ResponsesForm struct {
	Answers []service.AnswerInput `json:"answers" binding:"required"`
}
