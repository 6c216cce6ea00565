package query

// Condition is one (field, operator, value) filter predicate. A condition
// with an empty value is inert and excluded from composition.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Empty reports whether the condition carries no value.
func (c Condition) Empty() bool {
	return c.Value == ""
}

// NewCondition builds a condition for a field with its default operator and
// an empty value. Returns a zero condition if the field is unknown.
func NewCondition(reg *Registry, fieldID string) Condition {
	f := reg.Field(fieldID)
	if f == nil {
		return Condition{}
	}
	return Condition{Field: fieldID, Operator: string(DefaultOperator(f.Type))}
}

// ChangeField moves an existing condition to a new field. The operator
// resets to the new field's first operator and the value clears; a pair
// from the old field type must never carry into the new field's editor.
func ChangeField(c Condition, reg *Registry, fieldID string) Condition {
	if fieldID == c.Field {
		return c
	}
	return NewCondition(reg, fieldID)
}

// Normalize validates a condition against the registry. Unknown fields and
// operators invalid for the field's type yield ok=false; the caller drops
// the condition rather than failing the whole query.
func Normalize(reg *Registry, c Condition) (Condition, bool) {
	f := reg.Field(c.Field)
	if f == nil {
		return Condition{}, false
	}
	if !ValidOperator(f.Type, Operator(c.Operator)) {
		return Condition{}, false
	}
	return c, true
}

// Fragment maps a condition to its query parameters. Conditions on fields
// with no registered query key, unknown fields, invalid operators, and
// empty values all produce an empty fragment. Date "between" values use the
// "start..end" form and expand to From/To keys.
func Fragment(reg *Registry, c Condition) map[string]string {
	c, ok := Normalize(reg, c)
	if !ok || c.Empty() {
		return nil
	}
	f := reg.Field(c.Field)
	if f.QueryKey == "" {
		return nil
	}

	// The activities dateFrom/dateTo fields already name their bound; they
	// bind directly and only equals is meaningful for them.
	if c.Field == "dateFrom" || c.Field == "dateTo" {
		if Operator(c.Operator) != OpEquals {
			return nil
		}
		return map[string]string{f.QueryKey: c.Value}
	}

	frag := make(map[string]string, 2)
	switch Operator(c.Operator) {
	case OpAfter:
		frag[f.QueryKey+"From"] = c.Value
	case OpBefore:
		frag[f.QueryKey+"To"] = c.Value
	case OpBetween:
		start, end, ok := splitRange(c.Value)
		if !ok {
			return nil
		}
		frag[f.QueryKey+"From"] = start
		frag[f.QueryKey+"To"] = end
	case OpNotEquals:
		frag[f.QueryKey+"Not"] = c.Value
	case OpContains:
		frag[f.QueryKey+"Contains"] = c.Value
	case OpStartsWith:
		frag[f.QueryKey+"Prefix"] = c.Value
	default:
		frag[f.QueryKey] = c.Value
	}

	return frag
}

// splitRange parses a "start..end" range value.
func splitRange(v string) (string, string, bool) {
	for i := 0; i+1 < len(v); i++ {
		if v[i] == '.' && v[i+1] == '.' {
			start, end := v[:i], v[i+2:]
			if start == "" || end == "" {
				return "", "", false
			}
			return start, end, true
		}
	}
	return "", "", false
}

// isDateField reports whether a condition targets the date dimension of the
// composed query (either a date-typed field or the explicit bound fields).
func isDateField(reg *Registry, fieldID string) bool {
	f := reg.Field(fieldID)
	if f == nil {
		return false
	}
	return f.Type == FieldDate
}
