package models

import (
	"github.com/erp/procurement/internal/domain/hr"
	"github.com/google/uuid"
)

// DepartmentModel is the persistence model for the Department aggregate.
type DepartmentModel struct {
	TenantAggregateModel
	Code      string     `gorm:"type:varchar(50);not null;index"`
	Name      string     `gorm:"type:varchar(200);not null"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`
	Active    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DepartmentModel) TableName() string {
	return "departments"
}

// ToDomain converts the persistence model to a domain Department.
func (m *DepartmentModel) ToDomain() *hr.Department {
	d := &hr.Department{
		Code:      m.Code,
		Name:      m.Name,
		ManagerID: m.ManagerID,
		Active:    m.Active,
	}
	m.PopulateTenantAggregateRoot(&d.TenantAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain Department.
func (m *DepartmentModel) FromDomain(d *hr.Department) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Code = d.Code
	m.Name = d.Name
	m.ManagerID = d.ManagerID
	m.Active = d.Active
}

// DepartmentModelFromDomain creates a new persistence model from a domain Department.
func DepartmentModelFromDomain(d *hr.Department) *DepartmentModel {
	m := &DepartmentModel{}
	m.FromDomain(d)
	return m
}

// EmployeeModel is the persistence model for the Employee aggregate.
type EmployeeModel struct {
	TenantAggregateModel
	Name         string     `gorm:"type:varchar(200);not null"`
	WorkEmail    string     `gorm:"type:varchar(200)"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	Active       bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee.
func (m *EmployeeModel) ToDomain() *hr.Employee {
	e := &hr.Employee{
		Name:         m.Name,
		WorkEmail:    m.WorkEmail,
		UserID:       m.UserID,
		DepartmentID: m.DepartmentID,
		Active:       m.Active,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain Employee.
func (m *EmployeeModel) FromDomain(e *hr.Employee) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Name = e.Name
	m.WorkEmail = e.WorkEmail
	m.UserID = e.UserID
	m.DepartmentID = e.DepartmentID
	m.Active = e.Active
}

// EmployeeModelFromDomain creates a new persistence model from a domain Employee.
func EmployeeModelFromDomain(e *hr.Employee) *EmployeeModel {
	m := &EmployeeModel{}
	m.FromDomain(e)
	return m
}
