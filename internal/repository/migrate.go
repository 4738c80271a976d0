package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const ordersTable = "orders"

// Column names of the orders table.
const (
	colID              = "id"
	colReference       = "order_reference"
	colFormat          = "format"
	colStatus          = "status"
	colCustomerCompany = "customer_company"
	colCustomerCountry = "customer_country"
	colFreightPrice    = "freight_price"
	colFreightCurrency = "freight_currency"
	colAttachment      = "attachment"
	colPayload         = "payload"
	colCreatedAt       = "created_at"
)

var (
	// OrdersColumns holds the columns for the "orders" table.
	OrdersColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString, Size: 36},
		{Name: colReference, Type: field.TypeString, Size: 255},
		{Name: colFormat, Type: field.TypeString, Size: 64},
		{Name: colStatus, Type: field.TypeString, Size: 16},
		{Name: colCustomerCompany, Type: field.TypeString, Size: 255},
		{Name: colCustomerCountry, Type: field.TypeString, Size: 64},
		{Name: colFreightPrice, Type: field.TypeFloat64, Nullable: true},
		{Name: colFreightCurrency, Type: field.TypeString, Size: 3, Nullable: true},
		{Name: colAttachment, Type: field.TypeString, Size: 1024, Default: ""},
		{Name: colPayload, Type: field.TypeString, Size: 2147483647},
		{Name: colCreatedAt, Type: field.TypeTime},
	}
	// OrdersTable holds the schema information for the "orders" table.
	OrdersTable = &schema.Table{
		Name:       ordersTable,
		Columns:    OrdersColumns,
		PrimaryKey: []*schema.Column{OrdersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "order_order_reference",
				Unique:  false,
				Columns: []*schema.Column{OrdersColumns[1]},
			},
			{
				Name:    "order_created_at",
				Unique:  false,
				Columns: []*schema.Column{OrdersColumns[10]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		OrdersTable,
	}
)

// Migrate creates or updates the tables.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(db.drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
