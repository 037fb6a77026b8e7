package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

func TestNormalizeMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   map[string]any
		want model.Profile
	}{
		{
			name: "nil metadata gets every default",
			md:   nil,
			want: model.Profile{
				Role:        types.RoleVoyageur,
				GDPRConsent: true,
				Locale:      types.Locale("fr"),
			},
		},
		{
			name: "empty metadata gets every default",
			md:   map[string]any{},
			want: model.Profile{
				Role:        "voyageur",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
		{
			name: "camelCase keys",
			md: map[string]any{
				"role":                "admin",
				"firstName":           "Rivo",
				"lastName":            "Rakoto",
				"phone":               "+261340000000",
				"gdprConsent":         false,
				"locale":              "mg",
				"firstLoginCompleted": true,
			},
			want: model.Profile{
				Role:                types.RoleAdmin,
				FirstName:           "Rivo",
				LastName:            "Rakoto",
				Phone:               "+261340000000",
				GDPRConsent:         false,
				Locale:              "mg",
				FirstLoginCompleted: true,
			},
		},
		{
			name: "snake_case aliases",
			md: map[string]any{
				"first_name":            "Hery",
				"last_name":             "Andria",
				"gdpr_consent":          "false",
				"first_login_completed": "TRUE",
			},
			want: model.Profile{
				Role:                "voyageur",
				FirstName:           "Hery",
				LastName:            "Andria",
				GDPRConsent:         false,
				Locale:              "fr",
				FirstLoginCompleted: true,
			},
		},
		{
			name: "camelCase wins over snake_case",
			md: map[string]any{
				"firstName":  "Camel",
				"first_name": "Snake",
			},
			want: model.Profile{
				Role:        "voyageur",
				FirstName:   "Camel",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
		{
			name: "empty camelCase value falls through to snake_case",
			md: map[string]any{
				"firstName":   "",
				"first_name":  "Snake",
				"gdprConsent":  "maybe",
				"gdpr_consent": false,
			},
			want: model.Profile{
				Role:        "voyageur",
				FirstName:   "Snake",
				GDPRConsent: false,
				Locale:      "fr",
			},
		},
		{
			name: "null and empty values fall back to defaults",
			md: map[string]any{
				"role":        "",
				"locale":      nil,
				"gdprConsent": nil,
			},
			want: model.Profile{
				Role:        "voyageur",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
		{
			name: "numeric phone rendered without exponent",
			md: map[string]any{
				"phone": float64(261340000000),
			},
			want: model.Profile{
				Role:        "voyageur",
				Phone:       "261340000000",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
		{
			name: "unparseable booleans keep defaults",
			md: map[string]any{
				"gdprConsent":         "yes",
				"firstLoginCompleted": 1,
			},
			want: model.Profile{
				Role:        "voyageur",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
		{
			name: "unknown role carried verbatim",
			md: map[string]any{
				"role": "guide",
			},
			want: model.Profile{
				Role:        "guide",
				GDPRConsent: true,
				Locale:      "fr",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.NormalizeMetadata(tt.md)).Equal(tt.want)
		})
	}
}

func TestExpectedRole_DefaultsToVoyageur(t *testing.T) {
	gt.Value(t, model.ExpectedRole(map[string]any{})).Equal(types.Role("voyageur"))
	gt.Value(t, model.ExpectedRole(map[string]any{"role": "prestataire"})).Equal(types.RolePrestataire)
}

func TestMetadataKeyAlias(t *testing.T) {
	alias, ok := model.MetadataKeyAlias(model.MetadataKeyGDPRConsent)
	gt.B(t, ok).True()
	gt.Value(t, alias).Equal("gdpr_consent")

	_, ok = model.MetadataKeyAlias(model.MetadataKeyRole)
	gt.B(t, ok).False()
}
