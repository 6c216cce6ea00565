package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChangeFieldResetsOperatorAndValue(t *testing.T) {
	reg := ActivitiesRegistry()

	// select-type condition with a committed operator/value pair
	c := Condition{Field: "status", Operator: string(OpNotEquals), Value: "Cancelled"}

	// Moving to a text-type field must not carry the pair over.
	got := ChangeField(c, reg, "personId")
	want := Condition{Field: "personId", Operator: string(OpEquals), Value: ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field change (-want +got):\n%s", diff)
	}

	// Same field is a no-op.
	if got := ChangeField(c, reg, "status"); got != c {
		t.Errorf("same-field change altered condition: %+v", got)
	}
}

func TestNormalizeRejectsInvalidConditions(t *testing.T) {
	reg := PersonsRegistry()

	tests := []struct {
		name string
		cond Condition
		ok   bool
	}{
		{"valid text", Condition{Field: "name", Operator: string(OpContains), Value: "ann"}, true},
		{"unknown field", Condition{Field: "salary", Operator: string(OpEquals), Value: "1"}, false},
		{"operator wrong for type", Condition{Field: "category", Operator: string(OpContains), Value: "Bride"}, false},
		{"date between", Condition{Field: "weddingDate", Operator: string(OpBetween), Value: "2024-01-01..2024-02-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Normalize(reg, tt.cond); ok != tt.ok {
				t.Errorf("Normalize ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}

func TestFragmentMapping(t *testing.T) {
	persons := PersonsRegistry()
	activities := ActivitiesRegistry()

	tests := []struct {
		name string
		reg  *Registry
		cond Condition
		want map[string]string
	}{
		{
			"equals binds the query key",
			persons,
			Condition{Field: "name", Operator: string(OpEquals), Value: "Anna"},
			map[string]string{"name": "Anna"},
		},
		{
			"contains gets a suffix",
			persons,
			Condition{Field: "name", Operator: string(OpContains), Value: "nn"},
			map[string]string{"nameContains": "nn"},
		},
		{
			"startsWith gets a prefix key",
			persons,
			Condition{Field: "instagramId", Operator: string(OpStartsWith), Value: "@wed"},
			map[string]string{"instagramIdPrefix": "@wed"},
		},
		{
			"notEquals",
			activities,
			Condition{Field: "status", Operator: string(OpNotEquals), Value: "Cancelled"},
			map[string]string{"statusNot": "Cancelled"},
		},
		{
			"date between expands to both bounds",
			persons,
			Condition{Field: "weddingDate", Operator: string(OpBetween), Value: "2024-05-01..2024-05-31"},
			map[string]string{"weddingDateFrom": "2024-05-01", "weddingDateTo": "2024-05-31"},
		},
		{
			"explicit bound fields bind directly",
			activities,
			Condition{Field: "dateFrom", Operator: string(OpEquals), Value: "2024-05-01"},
			map[string]string{"dateFrom": "2024-05-01"},
		},
		{
			"explicit bound field drops a between range",
			activities,
			Condition{Field: "dateFrom", Operator: string(OpBetween), Value: "2024-01-01..2024-01-31"},
			nil,
		},
		{
			"explicit bound field drops a non-equals operator",
			activities,
			Condition{Field: "dateTo", Operator: string(OpBefore), Value: "2024-05-01"},
			nil,
		},
		{
			"unmapped field drops silently",
			persons,
			Condition{Field: "organization", Operator: string(OpContains), Value: "studio"},
			nil,
		},
		{
			"empty value is inert",
			persons,
			Condition{Field: "name", Operator: string(OpEquals), Value: ""},
			nil,
		},
		{
			"unknown field drops instead of erroring",
			persons,
			Condition{Field: "ghost", Operator: string(OpEquals), Value: "x"},
			nil,
		},
		{
			"malformed between range drops",
			persons,
			Condition{Field: "weddingDate", Operator: string(OpBetween), Value: "2024-05-01"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fragment(tt.reg, tt.cond)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fragment (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectFieldsDeclareOptions(t *testing.T) {
	// Every select field must carry its option list; the value editor has
	// nothing to offer for one without it.
	for _, reg := range []*Registry{PersonsRegistry(), ActivitiesRegistry()} {
		for _, f := range reg.Fields {
			if f.Type == FieldSelect && len(f.Options) == 0 {
				t.Errorf("%s: select field %q declares no options", reg.Screen, f.ID)
			}
		}
	}
}

func TestNewConditionUsesDefaultOperator(t *testing.T) {
	reg := ActivitiesRegistry()

	c := NewCondition(reg, "category")
	if c.Operator != string(OpEquals) {
		t.Errorf("select default operator = %q, want equals", c.Operator)
	}

	c = NewCondition(reg, "dateFrom")
	if c.Operator != string(OpEquals) {
		t.Errorf("date default operator = %q, want equals", c.Operator)
	}

	if c := NewCondition(reg, "nope"); c.Field != "" {
		t.Errorf("unknown field produced condition %+v", c)
	}
}
