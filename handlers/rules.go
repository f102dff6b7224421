package handlers

import (
	"fmt"

	"example.com/backstage/services/supplychain/domain"
	"example.com/backstage/services/supplychain/utils"
)

// alertRule inspects one ingested event and returns the alert it
// triggers, or nil. Rules are keyed by event type so new rules are
// additive and never touch the alert subsystem itself.
type alertRule func(event domain.Event, threshold float64) *domain.Alert

var alertRules = map[string]alertRule{
	domain.Delay: func(event domain.Event, _ float64) *domain.Alert {
		message := fmt.Sprintf("A delay was reported for item %s", event.ItemID)
		if reason := utils.GetStringValue(event.Metadata, "reason"); reason != "" {
			message = fmt.Sprintf("%s: %s", message, reason)
		}
		return &domain.Alert{
			Level:   domain.AlertWarning,
			Title:   "Delay reported",
			Message: message,
			ItemID:  event.ItemID,
		}
	},
	domain.QualityIssue: func(event domain.Event, _ float64) *domain.Alert {
		return &domain.Alert{
			Level:   domain.AlertWarning,
			Title:   "Quality issue reported",
			Message: fmt.Sprintf("A quality issue was reported for item %s", event.ItemID),
			ItemID:  event.ItemID,
		}
	},
	domain.InventoryLevel: func(event domain.Event, threshold float64) *domain.Alert {
		if !utils.HasKey(event.Metadata, "quantity") {
			return nil
		}
		quantity := utils.GetFloat64Value(event.Metadata, "quantity")
		if quantity >= threshold {
			return nil
		}
		return &domain.Alert{
			Level:   domain.AlertWarning,
			Title:   "Low inventory",
			Message: fmt.Sprintf("Inventory for item %s dropped to %g (threshold %g)", event.ItemID, quantity, threshold),
			ItemID:  event.ItemID,
		}
	},
}

// evaluateAlertRules applies the rule table to an ingested event
func evaluateAlertRules(event domain.Event, threshold float64) *domain.Alert {
	rule, ok := alertRules[event.Type]
	if !ok {
		return nil
	}
	return rule(event, threshold)
}
