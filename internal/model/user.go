package model

import "time"

// User is a teacher or administrator account.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       int       `json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role groups permissions. IsAdmin grants ownership-check bypass.
type Role struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Permission is a capability code attachable to roles.
type Permission struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// PermissionCode enumerates the capability codes checked by the RBAC layer.
type PermissionCode string

const (
	PermissionChaptersRead  PermissionCode = "chapters:read"
	PermissionChaptersWrite PermissionCode = "chapters:write"
	PermissionLessonsRead   PermissionCode = "lessons:read"
	PermissionLessonsWrite  PermissionCode = "lessons:write"
	PermissionExamsRead     PermissionCode = "exams:read"
	PermissionExamsWrite    PermissionCode = "exams:write"
	PermissionExamsGenerate PermissionCode = "exams:generate"
	PermissionClassesRead   PermissionCode = "classes:read"
	PermissionClassesWrite  PermissionCode = "classes:write"
	PermissionMediaUpload   PermissionCode = "media:upload"
	PermissionSystemMetrics PermissionCode = "system:metrics"
)

// AllPermissions lists every known permission code with its description,
// used to seed the permissions table.
var AllPermissions = []Permission{
	{Code: string(PermissionChaptersRead), Description: "View chapters and their questions"},
	{Code: string(PermissionChaptersWrite), Description: "Create, update and delete chapters and questions"},
	{Code: string(PermissionLessonsRead), Description: "View lessons"},
	{Code: string(PermissionLessonsWrite), Description: "Create, update and delete lessons"},
	{Code: string(PermissionExamsRead), Description: "View exam papers"},
	{Code: string(PermissionExamsWrite), Description: "Update and delete exam papers"},
	{Code: string(PermissionExamsGenerate), Description: "Generate and assemble exam papers"},
	{Code: string(PermissionClassesRead), Description: "View classes"},
	{Code: string(PermissionClassesWrite), Description: "Create, update and delete classes"},
	{Code: string(PermissionMediaUpload), Description: "Upload media files"},
	{Code: string(PermissionSystemMetrics), Description: "Stream system metrics"},
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
