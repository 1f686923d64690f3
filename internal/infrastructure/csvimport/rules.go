package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType is the expected shape of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "integer"
	TypeDecimal FieldType = "decimal"
	TypeBool    FieldType = "boolean"
)

// FieldRule validates one column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	Min       *decimal.Decimal
	Unique    bool
	Check     func(value string) error
}

// RuleBuilder builds a FieldRule
type RuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column; the type defaults to string
func Field(column string) *RuleBuilder {
	return &RuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *RuleBuilder) Required() *RuleBuilder { b.rule.Required = true; return b }
func (b *RuleBuilder) Int() *RuleBuilder      { b.rule.Type = TypeInt; return b }
func (b *RuleBuilder) Decimal() *RuleBuilder  { b.rule.Type = TypeDecimal; return b }
func (b *RuleBuilder) Bool() *RuleBuilder     { b.rule.Type = TypeBool; return b }

// Unique rejects a value already seen in an earlier row of the same file
func (b *RuleBuilder) Unique() *RuleBuilder { b.rule.Unique = true; return b }

// MaxLength limits the value length in characters
func (b *RuleBuilder) MaxLength(n int) *RuleBuilder { b.rule.MaxLength = n; return b }

// Min sets an inclusive lower bound for numeric columns
func (b *RuleBuilder) Min(v decimal.Decimal) *RuleBuilder { b.rule.Min = &v; return b }

// Check adds a custom check run after the built-in ones pass
func (b *RuleBuilder) Check(fn func(value string) error) *RuleBuilder { b.rule.Check = fn; return b }

func (b *RuleBuilder) Build() FieldRule { return b.rule }

// Validator applies rules to the rows of one file
type Validator struct {
	rules []FieldRule
	seen  map[string]map[string]int
}

// NewValidator creates a validator for rules. Rules run in order.
func NewValidator(rules ...FieldRule) *Validator {
	return &Validator{rules: rules, seen: make(map[string]map[string]int)}
}

// Columns lists the columns the rules mark required
func (v *Validator) Columns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// Validate returns every rule violation in row; nil means the row is valid
func (v *Validator) Validate(row *Row) []RowError {
	var errs []RowError
	for _, rule := range v.rules {
		if err := v.check(row, rule); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func (v *Validator) check(row *Row, rule FieldRule) *RowError {
	value := row.Get(rule.Column)
	fail := func(code, msg string) *RowError {
		return &RowError{Row: row.Line, Column: rule.Column, Code: code, Message: msg, Value: value}
	}

	if value == "" {
		if rule.Required {
			return fail(CodeRequired, "value is required")
		}
		return nil
	}

	switch rule.Type {
	case TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fail(CodeInvalidType, "must be a whole number")
		}
		if rule.Min != nil && decimal.NewFromInt(n).LessThan(*rule.Min) {
			return fail(CodeInvalidRange, fmt.Sprintf("must be at least %s", rule.Min.String()))
		}
	case TypeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fail(CodeInvalidType, "must be a decimal number")
		}
		if rule.Min != nil && d.LessThan(*rule.Min) {
			return fail(CodeInvalidRange, fmt.Sprintf("must be at least %s", rule.Min.String()))
		}
	case TypeBool:
		if _, err := ParseBool(value); err != nil {
			return fail(CodeInvalidType, "must be true or false")
		}
	}

	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return fail(CodeInvalidLength, fmt.Sprintf("must be at most %d characters", rule.MaxLength))
	}

	if rule.Unique {
		key := strings.ToLower(value)
		if v.seen[rule.Column] == nil {
			v.seen[rule.Column] = make(map[string]int)
		}
		if first, ok := v.seen[rule.Column][key]; ok {
			return fail(CodeDuplicateInFile, fmt.Sprintf("duplicate value (first seen in row %d)", first))
		}
		v.seen[rule.Column][key] = row.Line
	}

	if rule.Check != nil {
		if err := rule.Check(value); err != nil {
			return fail(CodeInvalidValue, err.Error())
		}
	}
	return nil
}

// ParseBool accepts the spellings spreadsheets produce
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}
