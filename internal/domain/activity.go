package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field names of an activity record as stored in the database.
const (
	FieldTimestamp       = "timestamp"
	FieldRateCode        = "rateCode"
	FieldDescription     = "description"
	FieldUnitPrice       = "unitPrice"
	FieldAssigned        = "assigned"
	FieldCompleted       = "completed"
	FieldProjectedValue  = "projectedValue"
	FieldRealizedValue   = "realizedValue"
	FieldMainTechName    = "mainTechName"
	FieldPartnerTechName = "partnerTechName"
)

// Value is a loosely typed scalar read from the record store.
// The zero Value is absent. JSON null also decodes to an absent Value.
type Value struct {
	raw     interface{}
	present bool
}

// NewValue wraps v as a present value. Numbers should be json.Number, float64 or int.
func NewValue(v interface{}) Value {
	if v == nil {
		return Value{}
	}
	return Value{raw: v, present: true}
}

// Present reports whether the field existed on the record.
func (v Value) Present() bool {
	return v.present
}

// Raw returns the decoded value: string, json.Number, bool, or a nested map/slice.
func (v Value) Raw() interface{} {
	return v.raw
}

// Text returns the value when it is a JSON string.
func (v Value) Text() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok && v.present
}

// UnmarshalJSON keeps numbers as json.Number so integers and decimals survive untouched.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode field value: %w", err)
	}
	*v = NewValue(raw)
	return nil
}

// MarshalJSON writes absent values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// ActivityRecord is one unit of work logged against a rate code.
// Every field but ID may be missing; the store does not enforce a schema.
type ActivityRecord struct {
	ID              string `json:"id"`
	Timestamp       Value  `json:"timestamp"`
	RateCode        Value  `json:"rateCode"`
	Description     Value  `json:"description"`
	UnitPrice       Value  `json:"unitPrice"`
	Assigned        Value  `json:"assigned"`
	Completed       Value  `json:"completed"`
	ProjectedValue  Value  `json:"projectedValue"`
	RealizedValue   Value  `json:"realizedValue"`
	MainTechName    Value  `json:"mainTechName"`
	PartnerTechName Value  `json:"partnerTechName"`
}

// UnmarshalJSON matches stored keys to fields exactly. A key that differs only in
// case, such as "UnitPrice", is ignored like any other unknown field.
func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rec ActivityRecord
	if raw, ok := fields["id"]; ok {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			rec.ID = id
		}
	}
	for name, raw := range fields {
		dst := rec.ref(name)
		if dst == nil {
			continue
		}
		if err := dst.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
	}

	*r = rec
	return nil
}

// Field returns the value stored under the given field name.
// Unknown names return an absent Value.
func (r ActivityRecord) Field(name string) Value {
	if v := r.ref(name); v != nil {
		return *v
	}
	return Value{}
}

func (r *ActivityRecord) ref(name string) *Value {
	switch name {
	case FieldTimestamp:
		return &r.Timestamp
	case FieldRateCode:
		return &r.RateCode
	case FieldDescription:
		return &r.Description
	case FieldUnitPrice:
		return &r.UnitPrice
	case FieldAssigned:
		return &r.Assigned
	case FieldCompleted:
		return &r.Completed
	case FieldProjectedValue:
		return &r.ProjectedValue
	case FieldRealizedValue:
		return &r.RealizedValue
	case FieldMainTechName:
		return &r.MainTechName
	case FieldPartnerTechName:
		return &r.PartnerTechName
	default:
		return nil
	}
}
