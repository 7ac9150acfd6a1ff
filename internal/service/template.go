package service

import (
	"strings"

	"github.com/marklangat/waleads-backend/internal/model"
)

// RenderTemplate substitutes {placeholder} tokens with contact fields.
// Missing values render as <unknown> rather than leaving the raw token in
// the outbound text.
func RenderTemplate(template string, contact *model.Contact) string {
	fields := map[string]string{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"city":       contact.City,
		"phone":      contact.Phone,
	}
	result := template
	for k, v := range fields {
		if v == "" {
			v = "<unknown>"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
