package analysis

import "strings"

// FieldMap maps lowercase field labels to resolved value text. Labels are
// unique with documented last-write-wins on duplicates; insertion order is
// retained so the overwrite behavior stays deterministic.
type FieldMap struct {
	labels []string
	values map[string]string
}

// NewFieldMap returns an empty field map.
func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]string)}
}

// Set assigns value to label. Setting an existing label overwrites its
// value in place (last write wins).
func (m *FieldMap) Set(label, value string) {
	if _, ok := m.values[label]; !ok {
		m.labels = append(m.labels, label)
	}
	m.values[label] = value
}

// Get returns the value for label and whether it was present.
func (m *FieldMap) Get(label string) (string, bool) {
	v, ok := m.values[label]
	return v, ok
}

// Len returns the number of distinct labels.
func (m *FieldMap) Len() int {
	return len(m.labels)
}

// Labels returns the labels in insertion order.
func (m *FieldMap) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// LinkFields pairs every key block with its value block and resolves both
// to text, producing the label-to-text field map. A key with no VALUE
// relationship, or whose VALUE ids are absent from the value map,
// contributes no entry. Lookup failures degrade to missing values, never
// errors. If a key legitimately links several value blocks the last one
// wins; the analysis service is not known to ever emit more than one.
func LinkFields(idx BlockIndex) *FieldMap {
	fields := NewFieldMap()

	for _, key := range idx.Keys {
		label := strings.ToLower(ResolveText(key, idx))
		for _, rel := range key.Relationships {
			if rel.Type != RelationshipValue {
				continue
			}
			for _, id := range rel.IDs {
				value, ok := idx.Values[id]
				if !ok {
					continue
				}
				fields.Set(label, ResolveText(value, idx))
			}
		}
	}

	return fields
}

// Field labels recognized by MapContractFields.
const (
	labelPlanName     = "plan name"
	labelStartDate    = "start date"
	labelEndDate      = "end date"
	labelBillingCycle = "billing cycle"
	labelAutoRenew    = "auto renew"
	labelClientName   = "client name"
)

// ExtractedContractData is the fixed-shape record pulled out of a field
// map. Dates are raw text at this stage; parsing happens during
// reconciliation. Nil means the label was absent from the document.
type ExtractedContractData struct {
	PlanName     *string
	StartDate    *string
	EndDate      *string
	BillingCycle *string
	AutoRenew    bool
	ClientName   *string
}

// MapContractFields maps the generic field map onto the contract schema.
// Absent labels yield nil (false for AutoRenew); no field is ever
// required at this stage. AutoRenew is true only when the resolved text
// is exactly the string "true" — deliberately not a general boolean
// parse, so "True" or "yes" stay false.
func MapContractFields(fields *FieldMap) ExtractedContractData {
	var data ExtractedContractData

	data.PlanName = lookup(fields, labelPlanName)
	data.StartDate = lookup(fields, labelStartDate)
	data.EndDate = lookup(fields, labelEndDate)
	data.BillingCycle = lookup(fields, labelBillingCycle)
	data.ClientName = lookup(fields, labelClientName)

	if v, ok := fields.Get(labelAutoRenew); ok {
		data.AutoRenew = v == "true"
	}

	return data
}

func lookup(fields *FieldMap, label string) *string {
	if v, ok := fields.Get(label); ok {
		return &v
	}
	return nil
}
