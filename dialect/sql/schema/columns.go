package schema

import (
	"fmt"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/fluentmap/dialect"
	"github.com/syssam/fluentmap/model"
)

const (
	defaultLength    = 255
	defaultPrecision = 19
	defaultScale     = 5
)

// columnType returns the column type for a mapped column of the given engine
// type. An explicit sql-type wins and is parsed by the dialect.
func (e *Exporter) columnType(engineType string, mc *model.ColumnMapping) (schema.Type, error) {
	if raw := model.Get(mc, model.Column.SQLType); raw != "" {
		t, err := e.parse(raw)
		if err != nil {
			return nil, fmt.Errorf("sql-type %q: %w", raw, err)
		}
		return t, nil
	}
	length := defaultLength
	if l, ok := model.Lookup(mc, model.Column.Length); ok && l > 0 {
		length = l
	}
	switch engineType {
	case "Int16":
		return e.integer("smallint"), nil
	case "Int32":
		return e.integer("int"), nil
	case "Int64", "TimeSpan":
		return e.integer("bigint"), nil
	case "Boolean":
		return &schema.BoolType{T: e.pick("boolean", "bool", "boolean")}, nil
	case "Single":
		return &schema.FloatType{T: "real"}, nil
	case "Double":
		return &schema.FloatType{T: e.pick("double precision", "double", "real")}, nil
	case "Decimal":
		p, s := defaultPrecision, defaultScale
		if v, ok := model.Lookup(mc, model.Column.Precision); ok && v > 0 {
			p = v
		}
		if v, ok := model.Lookup(mc, model.Column.Scale); ok && v >= 0 {
			s = v
		}
		return &schema.DecimalType{T: "decimal", Precision: p, Scale: s}, nil
	case "DateTime":
		return &schema.TimeType{T: e.pick("timestamp", "datetime", "datetime")}, nil
	case "Guid":
		switch e.dialect {
		case dialect.Postgres:
			return &schema.UUIDType{T: "uuid"}, nil
		case dialect.MySQL:
			return &schema.StringType{T: "char", Size: 36}, nil
		}
		return &schema.StringType{T: "text"}, nil
	case "BinaryBlob":
		return &schema.BinaryType{T: e.pick("bytea", "longblob", "blob")}, nil
	default:
		if e.dialect == dialect.SQLite {
			return &schema.StringType{T: "text"}, nil
		}
		return &schema.StringType{T: "varchar", Size: length}, nil
	}
}

func (e *Exporter) integer(name string) schema.Type {
	switch {
	case e.dialect == dialect.SQLite:
		name = "integer"
	case e.dialect == dialect.Postgres && name == "int":
		name = "integer"
	}
	return &schema.IntegerType{T: name}
}

// pick returns the type name of the exporter's dialect.
func (e *Exporter) pick(postgres, mysql, sqlite string) string {
	switch e.dialect {
	case dialect.Postgres:
		return postgres
	case dialect.MySQL:
		return mysql
	default:
		return sqlite
	}
}
