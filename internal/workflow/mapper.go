package workflow

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

// MapFields maps a borrower record onto ordered field updates using the
// fixed field-code table. The result contains only attributes present in
// both the record and the table, in table order. Missing attributes, nulls
// and empty strings are omitted. The function is total and deterministic.
func MapFields(table *model.FieldTable, borrower map[string]any) []model.FieldUpdate {
	updates := make([]model.FieldUpdate, 0, table.Len())
	if borrower == nil {
		return updates
	}

	for _, entry := range table.Entries() {
		raw, ok := borrower[entry.Attribute]
		if !ok {
			continue
		}
		value, ok := normalizeValue(raw)
		if !ok {
			continue
		}
		updates = append(updates, model.FieldUpdate{Code: entry.Code, Value: value})
	}
	return updates
}

// normalizeValue renders a borrower attribute as a field value string.
// Nulls and empty strings count as absent.
func normalizeValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
