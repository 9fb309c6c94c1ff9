package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// Stored attribute names used by the campaign editor.
const (
	fieldTabName       = "ONGLET_Name"
	fieldTabOrder      = "ONGLET_Order"
	fieldSectionName   = "SECTION_Name"
	fieldSectionOrder  = "SECTION_Order"
	fieldTacticName    = "TC_Label"
	fieldTacticOrder   = "TC_Order"
	fieldPlacementName = "PL_Label"
	fieldPlacementOrd  = "PL_Order"
	fieldCreativeName  = "CR_Label"
	fieldCreativeOrder = "CR_Order"
	fieldBreakdowns    = "breakdowns"
)

// asString renders a stored scalar as text; missing values become "".
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// asInt accepts the numeric shapes Firestore returns plus numeric strings.
func asInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err == nil {
			return n
		}
	}
	return 0
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	case int64:
		return x != 0
	}
	return false
}

func entityFromData(id string, data map[string]any, nameField, orderField string) domain.Entity {
	return domain.Entity{
		ID:     id,
		Name:   asString(data[nameField]),
		Order:  asInt(data[orderField]),
		Fields: data,
	}
}

// decodeBreakdowns reads the tactic "breakdowns" attribute:
//
//	{breakdownId: {periods: [{id, date, name, order, value, unitCost, total, isToggled}]}}
//
// Malformed entries are skipped; they surface later as missing periods.
func decodeBreakdowns(raw any) map[string]domain.BreakdownData {
	byID, ok := raw.(map[string]any)
	if !ok || len(byID) == 0 {
		return nil
	}
	out := make(map[string]domain.BreakdownData, len(byID))
	for breakdownID, v := range byID {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		periods, _ := entry["periods"].([]any)
		data := domain.BreakdownData{Periods: make([]domain.PeriodValue, 0, len(periods))}
		for _, p := range periods {
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			data.Periods = append(data.Periods, domain.PeriodValue{
				ID:         asString(pm["id"]),
				StoredDate: asString(pm["date"]),
				CustomName: asString(pm["name"]),
				Order:      asInt(pm["order"]),
				Value:      asFloat(pm["value"]),
				UnitCost:   asFloat(pm["unitCost"]),
				Total:      asFloat(pm["total"]),
				IsToggled:  asBool(pm["isToggled"]),
			})
		}
		out[breakdownID] = data
	}
	return out
}
