package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrEmptyUpdate = errors.New("no fields to update")

// UpdateExpr is a single SET instruction over a subset of an event's fields.
// Names maps "#field" placeholders to attribute names and Values maps
// ":field" placeholders to primitive values, so attribute names that clash
// with reserved words in the store are never written inline.
type UpdateExpr struct {
	Expression string
	Names      map[string]string
	Values     map[string]any
	fields     []string
}

// Fields lists the attribute names in the order they were set.
func (u UpdateExpr) Fields() []string {
	return append([]string(nil), u.fields...)
}

// Assignments resolves the placeholders back to attribute name -> value.
func (u UpdateExpr) Assignments() map[string]any {
	out := make(map[string]any, len(u.fields))
	for _, f := range u.fields {
		out[u.Names[namePlaceholder(f)]] = u.Values[valuePlaceholder(f)]
	}
	return out
}

func namePlaceholder(field string) string  { return "#" + field }
func valuePlaceholder(field string) string { return ":" + field }

// UpdateBuilder accumulates field assignments for an UpdateExpr.
type UpdateBuilder struct {
	fields []string
	values map[string]any
	err    error
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{values: make(map[string]any)}
}

// Set records field = value. Setting the same field twice keeps the last
// value in the original position. The key and creation timestamp are
// immutable and are refused.
func (b *UpdateBuilder) Set(field string, value any) *UpdateBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case field == "":
		b.err = errors.New("update field name is empty")
		return b
	case field == FieldEventID || field == FieldCreatedAt:
		b.err = fmt.Errorf("field %q is immutable", field)
		return b
	}
	if st, ok := value.(EventStatus); ok {
		if !st.Valid() {
			b.err = fmt.Errorf("field %q: invalid status %d", field, int(st))
			return b
		}
		value = st.String()
	}
	if _, exists := b.values[field]; !exists {
		b.fields = append(b.fields, field)
	}
	b.values[field] = value
	return b
}

// SetAll records every entry of fields in canonical attribute order, then
// any unknown attributes in lexical order.
func (b *UpdateBuilder) SetAll(fields map[string]any) *UpdateBuilder {
	for _, f := range orderedKeys(fields) {
		b.Set(f, fields[f])
	}
	return b
}

func (b *UpdateBuilder) Build() (UpdateExpr, error) {
	if b.err != nil {
		return UpdateExpr{}, b.err
	}
	if len(b.fields) == 0 {
		return UpdateExpr{}, ErrEmptyUpdate
	}
	expr := UpdateExpr{
		Names:  make(map[string]string, len(b.fields)),
		Values: make(map[string]any, len(b.fields)),
		fields: append([]string(nil), b.fields...),
	}
	sets := make([]string, 0, len(b.fields))
	for _, f := range b.fields {
		n, v := namePlaceholder(f), valuePlaceholder(f)
		expr.Names[n] = f
		expr.Values[v] = b.values[f]
		sets = append(sets, n+" = "+v)
	}
	expr.Expression = "SET " + strings.Join(sets, ", ")
	return expr, nil
}

var canonicalOrder = []string{
	FieldTitle, FieldDescription, FieldDate, FieldLocation,
	FieldCapacity, FieldOrganizer, FieldStatus, FieldUpdatedAt,
}

func orderedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	known := make(map[string]bool, len(canonicalOrder))
	for _, f := range canonicalOrder {
		known[f] = true
		if _, ok := m[f]; ok {
			out = append(out, f)
		}
	}
	var rest []string
	for f := range m {
		if !known[f] {
			rest = append(rest, f)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
