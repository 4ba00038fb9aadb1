package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"customer_id":   true,
	"customer_name": true,
	"po_number":     true,
	"status":        true,
	"total_amount":  true,
	"approved_at":   true,
}

// QueueEntrySortFields contains allowed sort fields for print queue entries
var QueueEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"added_at":   true,
	"is_printed": true,
	"printed_at": true,
}

// AuditLogSortFields contains allowed sort fields for audit logs
var AuditLogSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"action":      true,
	"entity_name": true,
	"entity_id":   true,
	"actor_id":    true,
}
