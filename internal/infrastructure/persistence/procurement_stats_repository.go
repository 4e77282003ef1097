package persistence

import (
	"context"

	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"gorm.io/gorm"
)

// GormProcurementStatsProvider feeds the purchase order gauges from the database
type GormProcurementStatsProvider struct {
	db *gorm.DB
}

// NewGormProcurementStatsProvider creates a new GormProcurementStatsProvider
func NewGormProcurementStatsProvider(db *gorm.DB) *GormProcurementStatsProvider {
	return &GormProcurementStatsProvider{db: db}
}

// CountOrdersByState counts purchase orders grouped by tenant and state
func (p *GormProcurementStatsProvider) CountOrdersByState(ctx context.Context) ([]telemetry.OrderStateCount, error) {
	var rows []telemetry.OrderStateCount
	if err := p.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Select("tenant_id, state, COUNT(*) AS count").
		Group("tenant_id, state").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ telemetry.ProcurementStatsProvider = (*GormProcurementStatsProvider)(nil)
