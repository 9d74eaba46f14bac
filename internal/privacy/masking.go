package privacy

import (
	"strings"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+1234567890" -> "+******7890"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) == 1 {
			return phone
		}
		if len(phone) <= 5 {
			return "+" + strings.Repeat("*", len(phone)-1)
		}
		return "+" + strings.Repeat("*", len(phone)-5) + phone[len(phone)-4:]
	}

	return maskString(phone, 4)
}

// MaskSender masks an SMS originating address. Numeric addresses use phone
// masking; alphanumeric sender IDs ("BANK", "Google") keep their first rune
// so operators can still tell senders apart.
func MaskSender(address string) string {
	if address == "" {
		return ""
	}

	if strings.HasPrefix(address, "+") || isNumeric(address) {
		return MaskPhoneNumber(address)
	}

	runes := []rune(address)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// MaskBody hides message content entirely
func MaskBody(body string) string {
	if body == "" {
		return ""
	}
	return "[hidden]"
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		s, isString := v.(string)
		if !isString {
			masked[k] = v
			continue
		}

		switch k {
		case "sender", "address", "from":
			masked[k] = MaskSender(s)
		case "phone", "phone_number":
			masked[k] = MaskPhoneNumber(s)
		case "body", "content":
			masked[k] = MaskBody(s)
		default:
			masked[k] = v
		}
	}

	return masked
}
