package checks

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"material-reconciler/core/database"

	"gorm.io/gorm"
)

// ServerReport strictly types the result of a schema integrity check.
type ServerReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckServerIntegrity verifies the database schema using GORM models as the source of truth.
func CheckServerIntegrity(db *gorm.DB, models []interface{}) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &ServerReport{
		Driver:  db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
		Matched: true,
	}

	for _, model := range models {
		tableName, tbl, err := CheckModel(db, model)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			report.Matched = false
			continue
		}
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

// CheckModel compares one model's gorm columns with the live table.
func CheckModel(db *gorm.DB, model interface{}) (string, TableReport, error) {
	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return "", TableReport{}, fmt.Errorf("model %T is not a struct", model)
	}

	tabler, ok := reflect.New(typ).Interface().(interface{ TableName() string })
	if !ok {
		return "", TableReport{}, fmt.Errorf("model %s does not implement TableName", typ.Name())
	}
	tableName := tabler.TableName()

	actualCols, err := database.GetTableColumns(db, tableName)
	if err != nil {
		return tableName, TableReport{}, fmt.Errorf("failed to inspect table %s: %w", tableName, err)
	}

	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}
	if len(actualCols) == 0 {
		return tableName, TableReport{}, fmt.Errorf("table %s does not exist", tableName)
	}

	actualMap := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		gormTag := field.Tag.Get("gorm")

		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			tbl.Status = "error"
			continue
		}

		// An explicit type: tag wins; otherwise the Go type decides the family.
		if expType := strings.ToLower(parseGormType(gormTag)); expType != "" {
			if !strings.Contains(actCol.Type, expType) {
				tbl.TypeMismatches = append(tbl.TypeMismatches,
					fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
				tbl.Status = "error"
			}
			continue
		}

		family, markers := typeFamily(field.Type)
		if family == "" || matchesAny(actCol.Type, markers) {
			continue
		}
		tbl.TypeMismatches = append(tbl.TypeMismatches,
			fmt.Sprintf("%s: expected %s, got %s", colName, family, actCol.Type))
		tbl.Status = "error"
	}

	return tableName, tbl, nil
}

var timeType = reflect.TypeOf(time.Time{})

// typeFamily returns the column type family of a Go field and the substrings
// any dialect uses for it.
func typeFamily(t reflect.Type) (string, []string) {
	if t == timeType {
		return "datetime", []string{"date", "time"}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer", []string{"int"}
	case reflect.Float32, reflect.Float64:
		return "float", []string{"float", "double", "real", "numeric", "decimal"}
	case reflect.String:
		return "string", []string{"char", "text"}
	case reflect.Bool:
		return "boolean", []string{"bool", "tinyint", "bit"}
	default:
		return "", nil
	}
}

func matchesAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	parts := strings.Split(tag, ";")
	for _, p := range parts {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	parts := strings.Split(tag, ";")
	for _, p := range parts {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
