package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/project"
	"github.com/erp/procurement/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for the Project aggregate.
type ProjectModel struct {
	TenantAggregateModel
	Name                string          `gorm:"type:varchar(200);not null"`
	Description         string          `gorm:"type:text"`
	DepartmentID        *uuid.UUID      `gorm:"type:uuid;index"`
	DepartmentManagerID *uuid.UUID      `gorm:"type:uuid;index"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DateStart           *time.Time      `gorm:"type:date"`
	DateEnd             *time.Time      `gorm:"type:date"`
	Stage               project.Stage   `gorm:"type:varchar(20);not null;default:'to_do';index"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *project.Project {
	p := &project.Project{
		Name:                m.Name,
		Description:         m.Description,
		DepartmentID:        m.DepartmentID,
		DepartmentManagerID: m.DepartmentManagerID,
		Currency:            valueobject.Currency(m.Currency),
		Amount:              m.Amount,
		DateStart:           m.DateStart,
		DateEnd:             m.DateEnd,
		Stage:               m.Stage,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Project.
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.DepartmentID = p.DepartmentID
	m.DepartmentManagerID = p.DepartmentManagerID
	m.Currency = string(p.Currency)
	m.Amount = p.Amount
	m.DateStart = p.DateStart
	m.DateEnd = p.DateEnd
	m.Stage = p.Stage
}

// ProjectModelFromDomain creates a new persistence model from a domain Project.
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
