package db

import (
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// AutoMigrate migrates the models from their gorm tags. On sqlite, decimal columns are
// declared TEXT: a NUMERIC column there stores the value as a REAL and loses digits.
func AutoMigrate(conn *gorm.DB, models ...any) error {
	if conn.Dialector.Name() == DialectSQLite {
		for _, model := range models {
			stmt := &gorm.Statement{DB: conn}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("parse %T: %w", model, err)
			}
			for _, field := range stmt.Schema.Fields {
				if field.IndirectFieldType == decimalType {
					field.DataType = schema.DataType("text")
				}
			}
		}
	}
	return conn.AutoMigrate(models...)
}
