package project

import (
	"time"

	"github.com/erp/procurement/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest represents a request to create a project. The
// currency defaults to the company currency.
type CreateProjectRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=4000"`
	DepartmentID *uuid.UUID      `json:"department_id"`
	Currency     string          `json:"currency" binding:"omitempty,len=3"`
	Amount       decimal.Decimal `json:"amount"`
	DateStart    *time.Time      `json:"date_start"`
	DateEnd      *time.Time      `json:"date"`
}

// UpdateProjectRequest represents a partial update. Nil fields are left
// untouched; ClearDepartment unsets the department.
type UpdateProjectRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" binding:"omitempty,max=4000"`
	DepartmentID    *uuid.UUID       `json:"department_id"`
	ClearDepartment bool             `json:"clear_department"`
	Currency        *string          `json:"currency" binding:"omitempty,len=3"`
	Amount          *decimal.Decimal `json:"amount"`
	DateStart       *time.Time       `json:"date_start"`
	DateEnd         *time.Time       `json:"date"`
}

// ChangeStageRequest moves a project to another stage
type ChangeStageRequest struct {
	Stage string `json:"stage" binding:"required,oneof=to_do in_progress done cancelled"`
}

// ProjectListFilter represents list filters
type ProjectListFilter struct {
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search       string     `form:"search"`
	DepartmentID *uuid.UUID `form:"department_id"`
	Stage        string     `form:"stage" binding:"omitempty,oneof=to_do in_progress done cancelled"`
}

// ProjectResponse is the project view
type ProjectResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	DepartmentID        *uuid.UUID      `json:"department_id,omitempty"`
	DepartmentManagerID *uuid.UUID      `json:"department_manager_id,omitempty"`
	Currency            string          `json:"currency"`
	Amount              decimal.Decimal `json:"amount"`
	DateStart           *time.Time      `json:"date_start,omitempty"`
	DateEnd             *time.Time      `json:"date,omitempty"`
	Stage               string          `json:"stage"`
	EditableFields      []string        `json:"editable_fields"`
	Version             int             `json:"version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToProjectResponse converts a domain project
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Description:         p.Description,
		DepartmentID:        p.DepartmentID,
		DepartmentManagerID: p.DepartmentManagerID,
		Currency:            p.Currency.String(),
		Amount:              p.Amount,
		DateStart:           p.DateStart,
		DateEnd:             p.DateEnd,
		Stage:               p.Stage.String(),
		EditableFields:      p.EditableFields(),
		Version:             p.GetVersion(),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}
