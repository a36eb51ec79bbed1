package mailer

import (
	"net/mail"
	"strings"
)

// ResolveRecipients picks the recipient list from the first source that
// yields any addresses: the multi-recipient field, then the single
// recipient field, then the sender address itself.
func ResolveRecipients(to, recipient, from string) []string {
	for _, source := range []string{to, recipient, from} {
		if addrs := ParseAddressList(source); len(addrs) > 0 {
			return addrs
		}
	}
	return nil
}

// ParseAddressList splits on commas, semicolons, and newlines, accepts
// "Display Name <addr>" forms, and de-duplicates case-insensitively while
// preserving first-seen order.
func ParseAddressList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	for _, field := range fields {
		addr := bareAddress(strings.TrimSpace(field))
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

func bareAddress(field string) string {
	if field == "" {
		return ""
	}
	if parsed, err := mail.ParseAddress(field); err == nil {
		return parsed.Address
	}
	// Display names net/mail rejects (unquoted punctuation) still carry a
	// usable angle-bracketed address.
	if i := strings.Index(field, "<"); i >= 0 {
		if j := strings.Index(field[i:], ">"); j > 0 {
			return strings.TrimSpace(field[i+1 : i+j])
		}
	}
	return field
}
