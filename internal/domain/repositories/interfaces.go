// Package repositories defines the persistence contracts consumed by the
// application services.
package repositories

import (
	"github.com/mycomize/mycomize-go/internal/domain/entities/commerce"
	"github.com/mycomize/mycomize-go/internal/domain/entities/cultivation"
)

// GrowRepository persists grows, always scoped to an owning user.
type GrowRepository interface {
	FindByID(userID, id int64) (*cultivation.Grow, error)
	FindAll(userID int64, offset, limit int) ([]*cultivation.Grow, error)
	Store(g *cultivation.Grow) error
	Update(g *cultivation.Grow) error
	Delete(userID, id int64) error
}

// InventoryFilter narrows inventory listings.
type InventoryFilter struct {
	AvailableOnly bool
	ItemType      string
	Offset        int
	Limit         int
}

// InventoryRepository persists inventory items.
type InventoryRepository interface {
	FindByID(userID, id int64) (*cultivation.InventoryItem, error)
	FindAll(userID int64, filter InventoryFilter) ([]*cultivation.InventoryItem, error)
	Store(item *cultivation.InventoryItem) error
	Update(item *cultivation.InventoryItem) error
	Delete(userID, id int64) error
}

// TekRepository persists shareable teks.
type TekRepository interface {
	FindByID(id int64) (*cultivation.Tek, error)
	FindPublic(offset, limit int) ([]*cultivation.Tek, error)
	FindByCreator(userID int64, offset, limit int) ([]*cultivation.Tek, error)
	FindVisible(userID int64, offset, limit int) ([]*cultivation.Tek, error)
	Store(t *cultivation.Tek) error
	Update(t *cultivation.Tek) error
	Delete(id int64) error
	IncrementViewCount(id int64) error
	IncrementImportCount(id int64) error
}

// TemplateRepository persists monotub tek templates.
type TemplateRepository interface {
	FindByID(id int64) (*cultivation.Template, error)
	FindPublic(species string, offset, limit int) ([]*cultivation.Template, error)
	FindByCreator(userID int64, offset, limit int) ([]*cultivation.Template, error)
	Store(t *cultivation.Template) error
	Update(t *cultivation.Template) error
	Delete(id int64) error
	IncrementUsageCount(id int64) error
}

// CalendarRepository persists calendar task instances.
type CalendarRepository interface {
	FindByID(userID, id int64) (*cultivation.CalendarTask, error)
	FindAll(userID int64, growID *int64) ([]*cultivation.CalendarTask, error)
	Store(task *cultivation.CalendarTask) error
	StoreBulk(tasks []*cultivation.CalendarTask) error
	Update(task *cultivation.CalendarTask) error
	Delete(userID, id int64) error
	DeleteByParentTask(userID int64, parentTaskID string) (int64, error)
	OwnsGrow(userID, growID int64) (bool, error)
}

// IoTRepository persists gateways and their entities.
type IoTRepository interface {
	FindGatewayByID(userID, id int64) (*cultivation.IoTGateway, error)
	FindGateways(userID int64, offset, limit int) ([]*cultivation.IoTGateway, error)
	StoreGateway(gw *cultivation.IoTGateway) error
	UpdateGateway(gw *cultivation.IoTGateway) error
	DeleteGateway(userID, id int64) error

	FindEntities(gatewayID int64) ([]*cultivation.IoTEntity, error)
	FindEntityByID(gatewayID, id int64) (*cultivation.IoTEntity, error)
	StoreEntity(e *cultivation.IoTEntity) error
	UpdateEntity(e *cultivation.IoTEntity) error
	DeleteEntity(gatewayID, id int64) error
}

// OrderRepository persists plan purchase records.
type OrderRepository interface {
	FindByUser(userID int64, offset, limit int) ([]*commerce.Order, int64, error)
	Store(o *commerce.Order) error
}
