package model

import (
	"strconv"
	"strings"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

// Identity metadata keys. Each field is looked up under its camelCase key first and its
// snake_case key second.
const (
	MetadataKeyRole                = "role"
	MetadataKeyFirstName           = "firstName"
	MetadataKeyLastName            = "lastName"
	MetadataKeyPhone               = "phone"
	MetadataKeyGDPRConsent         = "gdprConsent"
	MetadataKeyLocale              = "locale"
	MetadataKeyFirstLoginCompleted = "firstLoginCompleted"
)

const (
	DefaultGDPRConsent         = true
	DefaultFirstLoginCompleted = false
)

var metadataAliases = map[string]string{
	MetadataKeyFirstName:           "first_name",
	MetadataKeyLastName:            "last_name",
	MetadataKeyGDPRConsent:         "gdpr_consent",
	MetadataKeyFirstLoginCompleted: "first_login_completed",
}

// Profile is identity metadata with every default applied
type Profile struct {
	Role                types.Role
	FirstName           string
	LastName            string
	Phone               string
	GDPRConsent         bool
	Locale              types.Locale
	FirstLoginCompleted bool
}

// NormalizeMetadata is the only place identity metadata defaults are decided. Analysis,
// repairs and the generated database trigger all derive their defaults from it.
// A missing key, a null value and an empty string are all treated as absent.
func NormalizeMetadata(md map[string]any) Profile {
	p := Profile{
		Role:                types.DefaultRole,
		GDPRConsent:         DefaultGDPRConsent,
		Locale:              types.DefaultLocale,
		FirstLoginCompleted: DefaultFirstLoginCompleted,
	}

	if s, ok := metadataString(md, MetadataKeyRole); ok {
		p.Role = types.Role(s)
	}
	if s, ok := metadataString(md, MetadataKeyFirstName); ok {
		p.FirstName = s
	}
	if s, ok := metadataString(md, MetadataKeyLastName); ok {
		p.LastName = s
	}
	if s, ok := metadataString(md, MetadataKeyPhone); ok {
		p.Phone = s
	}
	if s, ok := metadataString(md, MetadataKeyLocale); ok {
		p.Locale = types.Locale(s)
	}
	if b, ok := metadataBool(md, MetadataKeyGDPRConsent); ok {
		p.GDPRConsent = b
	}
	if b, ok := metadataBool(md, MetadataKeyFirstLoginCompleted); ok {
		p.FirstLoginCompleted = b
	}

	return p
}

// ExpectedRole returns the role an application row must carry for identity metadata md
func ExpectedRole(md map[string]any) types.Role {
	return NormalizeMetadata(md).Role
}

// MetadataKeyAlias returns the snake_case spelling accepted for key, if any
func MetadataKeyAlias(key string) (string, bool) {
	alias, ok := metadataAliases[key]
	return alias, ok
}

// candidates returns the values stored under key and its alias, in lookup order
func candidates(md map[string]any, key string) []any {
	if md == nil {
		return nil
	}
	var values []any
	if v, ok := md[key]; ok && v != nil {
		values = append(values, v)
	}
	if alias, ok := metadataAliases[key]; ok {
		if v, ok := md[alias]; ok && v != nil {
			values = append(values, v)
		}
	}
	return values
}

// metadataString renders scalars the same way PostgreSQL's ->> operator renders jsonb
// scalars, so the Go path and the trigger path agree.
func metadataString(md map[string]any, key string) (string, bool) {
	for _, v := range candidates(md, key) {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case bool:
			s = strconv.FormatBool(val)
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			s = strconv.Itoa(val)
		case int64:
			s = strconv.FormatInt(val, 10)
		}
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func metadataBool(md map[string]any, key string) (bool, bool) {
	for _, v := range candidates(md, key) {
		switch val := v.(type) {
		case bool:
			return val, true
		case string:
			switch strings.ToLower(val) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		}
	}
	return false, false
}
