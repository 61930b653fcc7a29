package schema

import (
	"fmt"
	"slices"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// ValidationError is one finding of ValidateDiff or Check.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking marks changes that lose schema objects or data.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column == "" {
		return e.Table + ": " + e.Message
	}
	return e.Table + "." + e.Column + ": " + e.Message
}

// ValidationResult holds the findings of a validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors reports whether any finding is an error.
func (r *ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// HasWarnings reports whether any finding is a warning.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// HasBreakingChanges reports whether any finding, allowed or not, is
// breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	breaking := func(e *ValidationError) bool { return e.Breaking }
	return slices.ContainsFunc(r.Errors, breaking) || slices.ContainsFunc(r.Warnings, breaking)
}

// String lists the errors and then the warnings, one per line.
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "No issues found"
	}
	var b strings.Builder
	for _, group := range []struct {
		title string
		list  []*ValidationError
	}{{"Errors", r.Errors}, {"Warnings", r.Warnings}} {
		if len(group.list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", group.title)
		for _, e := range group.list {
			mark := ""
			if e.Breaking {
				mark = " [BREAKING]"
			}
			fmt.Fprintf(&b, "  - %s%s\n", e, mark)
		}
	}
	return b.String()
}

func (r *ValidationResult) warn(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) fail(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// change is a kind of schema change ValidateDiff reports as an error unless
// it is allowed.
type change uint8

const (
	dropTable change = iota
	dropColumn
	dropIndex
	nullToNotNull
)

// ValidateOption configures ValidateDiff.
type ValidateOption func(allowed map[change]bool)

func allow(c change) ValidateOption {
	return func(allowed map[change]bool) { allowed[c] = true }
}

// AllowDropColumn reports dropped columns as warnings.
func AllowDropColumn() ValidateOption { return allow(dropColumn) }

// AllowDropTable reports dropped tables as warnings.
func AllowDropTable() ValidateOption { return allow(dropTable) }

// AllowDropIndex reports dropped indexes as warnings.
func AllowDropIndex() ValidateOption { return allow(dropIndex) }

// AllowNullToNotNull reports columns becoming NOT NULL as warnings.
func AllowNullToNotNull() ValidateOption { return allow(nullToNotNull) }

// differ compares two table sets of the same dialect.
type differ struct {
	e       *Exporter
	allowed map[change]bool
	result  *ValidationResult
}

// guarded records a change of kind c, as a warning when it is allowed.
func (d *differ) guarded(c change, breaking bool, table, column, message string) {
	err := &ValidationError{Table: table, Column: column, Message: message, Breaking: breaking}
	if d.allowed[c] {
		d.result.Warnings = append(d.result.Warnings, err)
	} else {
		d.result.Errors = append(d.result.Errors, err)
	}
}

// ValidateDiff compares the tables of two compilations of the same mappings.
// Breaking changes are errors unless allowed by an option, and changes that
// may fail on existing data are warnings.
//
//	before, _ := e.Tables(previous)
//	after, _ := e.Tables(doc)
//	if r := e.ValidateDiff(before, after); r.HasBreakingChanges() {
//	    log.Println(r)
//	}
func (e *Exporter) ValidateDiff(current, desired []*schema.Table, opts ...ValidateOption) *ValidationResult {
	d := &differ{e: e, allowed: make(map[change]bool), result: &ValidationResult{}}
	for _, opt := range opts {
		opt(d.allowed)
	}
	byName := func(tables []*schema.Table) map[string]*schema.Table {
		m := make(map[string]*schema.Table, len(tables))
		for _, t := range tables {
			m[t.Name] = t
		}
		return m
	}
	have, want := byName(current), byName(desired)
	for _, t := range current {
		if _, ok := want[t.Name]; !ok {
			d.guarded(dropTable, true, t.Name, "", "table will be dropped")
		}
	}
	for _, t := range desired {
		if cur, ok := have[t.Name]; ok {
			d.table(cur, t)
		}
	}
	return d.result
}

func (d *differ) table(current, desired *schema.Table) {
	name := current.Name
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); !ok {
			d.guarded(dropColumn, true, name, c.Name, "column will be dropped")
		}
	}
	for _, want := range desired.Columns {
		have, ok := current.Column(want.Name)
		if !ok {
			if !want.Type.Null && want.Default == nil {
				d.result.warn(name, want.Name, "new NOT NULL column without default value may fail if table has data")
			}
			continue
		}
		d.column(name, have, want)
	}
	for _, idx := range desired.Indexes {
		if _, ok := current.Index(idx.Name); !ok && idx.Unique {
			d.result.warn(name, "", "adding unique index %q may fail if duplicate values exist", idx.Name)
		}
	}
	for _, idx := range current.Indexes {
		if _, ok := desired.Index(idx.Name); !ok {
			d.guarded(dropIndex, false, name, "", fmt.Sprintf("index %q will be dropped", idx.Name))
		}
	}
}

func (d *differ) column(table string, have, want *schema.Column) {
	if from, to := d.e.typeName(have.Type.Type), d.e.typeName(want.Type.Type); from != to {
		d.result.warn(table, want.Name, "column type changing from %s to %s", from, to)
	}
	if have.Type.Null && !want.Type.Null {
		d.guarded(nullToNotNull, true, table, want.Name, "column changing from NULL to NOT NULL may fail if column has NULL values")
	}
	hs, ok1 := have.Type.Type.(*schema.StringType)
	ws, ok2 := want.Type.Type.(*schema.StringType)
	if ok1 && ok2 && hs.Size > 0 && ws.Size > 0 && ws.Size < hs.Size {
		d.result.warn(table, want.Name, "column size reducing from %d to %d may truncate data", hs.Size, ws.Size)
	}
}

func (e *Exporter) typeName(t schema.Type) string {
	if t == nil {
		return ""
	}
	s, err := e.format(t)
	if err != nil {
		return fmt.Sprintf("%T", t)
	}
	return s
}

// Check validates the tables of one compilation against the limits of the
// dialect.
func (e *Exporter) Check(tables []*schema.Table) *ValidationResult {
	result := &ValidationResult{}
	names := make(map[string]bool, len(tables))
	for _, t := range tables {
		key := t.Name
		if t.Schema != nil && t.Schema.Name != "" {
			key = t.Schema.Name + "." + t.Name
		}
		if names[key] {
			result.fail(t.Name, "", "duplicate table name")
		}
		names[key] = true
		e.checkTable(t, result)
	}
	return result
}

func (e *Exporter) checkTable(t *schema.Table, result *ValidationResult) {
	e.checkIdent(t.Name, "", t.Name, result)
	if t.PrimaryKey == nil {
		result.warn(t.Name, "", "table has no primary key")
	}
	for _, c := range t.Columns {
		e.checkIdent(t.Name, c.Name, c.Name, result)
	}
	for _, idx := range t.Indexes {
		e.checkIdent(t.Name, "", idx.Name, result)
	}
	for _, fk := range t.ForeignKeys {
		e.checkIdent(t.Name, "", fk.Symbol, result)
		for i, c := range fk.Columns {
			if i >= len(fk.RefColumns) {
				break
			}
			if from, to := e.typeName(c.Type.Type), e.typeName(refType(fk.RefColumns[i].Type.Type)); from != to {
				result.fail(t.Name, c.Name, "foreign key %q column type %s does not match %s.%s type %s", fk.Symbol, from, fk.RefTable.Name, fk.RefColumns[i].Name, to)
			}
		}
	}
}

func (e *Exporter) checkIdent(table, column, name string, result *ValidationResult) {
	if e.maxIdent > 0 && len(name) > e.maxIdent {
		result.fail(table, column, "identifier %q exceeds the %s limit of %d characters", name, e.dialect, e.maxIdent)
	}
}
