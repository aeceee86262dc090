package notify

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var bookingEventSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"recipient", "ownerKey", "guestName", "bookingTime", "partySize"},
	"properties": map[string]interface{}{
		"recipient":   map[string]interface{}{"type": "string", "minLength": 3},
		"ownerKey":    map[string]interface{}{"type": "string", "minLength": 1},
		"guestName":   map[string]interface{}{"type": "string", "minLength": 1},
		"bookingDate": map[string]interface{}{"type": "string"},
		"bookingTime": map[string]interface{}{"type": "string"},
		"partySize":   map[string]interface{}{"type": "integer", "minimum": 1},
	},
}

var upgradePlanSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"recipient"},
	"properties": map[string]interface{}{
		"recipient": map[string]interface{}{"type": "string", "minLength": 3},
		"ownerKey":  map[string]interface{}{"type": "string"},
	},
}

func validateDocument(schemaMap, data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}

	return nil
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	// Basic email validation
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}

func bookingEventDocument(recipient, ownerKey string, details BookingDetails) map[string]interface{} {
	return map[string]interface{}{
		"recipient":   recipient,
		"ownerKey":    ownerKey,
		"guestName":   details.GuestName,
		"bookingDate": details.BookingDate,
		"bookingTime": details.BookingTime,
		"partySize":   details.PartySize,
	}
}
