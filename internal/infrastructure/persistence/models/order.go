package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate. Monetary
// amounts are stored as bigint subunits next to their currency code so no
// precision is lost at the storage boundary.
type OrderModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_orders_account_name,priority:1"`
	AccountRef      string           `gorm:"type:varchar(20);not null"`
	CatererID       string           `gorm:"type:varchar(100)"`
	Name            string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_account_name,priority:2"`
	Status          order.Status     `gorm:"type:varchar(20);not null;default:'ACCEPTED'"`
	SubtotalAmount  int64            `gorm:"not null;default:0"`
	TotalAmount     int64            `gorm:"not null;default:0"`
	Currency        string           `gorm:"type:varchar(3);not null;default:'USD'"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	EventAt         time.Time        `gorm:"index"`
	CreatedAt       time.Time        `gorm:"not null"`
	UpdatedAt       time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for one order line item
type OrderItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID string    `gorm:"type:varchar(200);not null"`
	Amount    int64     `gorm:"not null;default:0"`
	Currency  string    `gorm:"type:varchar(3);not null;default:'USD'"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() (*order.Order, error) {
	currency := valueobject.Currency(m.Currency)
	subtotal, err := valueobject.NewMoneyFromSubunits(m.SubtotalAmount, currency)
	if err != nil {
		return nil, err
	}
	total, err := valueobject.NewMoneyFromSubunits(m.TotalAmount, currency)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, len(m.Items))
	for i, item := range m.Items {
		amount, err := valueobject.NewMoneyFromSubunits(item.Amount, valueobject.Currency(item.Currency))
		if err != nil {
			return nil, err
		}
		items[i] = order.Item{
			ProductID: item.ProductID,
			Amount:    amount,
		}
	}

	return &order.Order{
		ID:         m.ID,
		AccountID:  m.AccountID,
		AccountRef: account.Ref(m.AccountRef),
		CatererID:  m.CatererID,
		Name:       m.Name,
		Status:     m.Status,
		Subtotal:   subtotal,
		Total:      total,
		Items:      items,
		EventAt:    m.EventAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.AccountID = o.AccountID
	m.AccountRef = o.AccountRef.String()
	m.CatererID = o.CatererID
	m.Name = o.Name
	m.Status = o.Status
	m.SubtotalAmount = o.Subtotal.Subunits()
	m.TotalAmount = o.Total.Subunits()
	m.Currency = o.Subtotal.Currency().String()
	m.EventAt = o.EventAt
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModel{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Amount:    item.Amount.Subunits(),
			Currency:  item.Amount.Currency().String(),
			CreatedAt: o.CreatedAt,
		}
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// ToSummary converts the persistence model to an order Summary projection
func (m *OrderModel) ToSummary() order.Summary {
	return order.Summary{
		ID:        m.ID,
		Name:      m.Name,
		Status:    m.Status,
		CatererID: m.CatererID,
	}
}
