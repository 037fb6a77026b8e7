package postgres

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"text/template"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

const (
	triggerFunctionName = "gasyway_sync_identity"
	triggerName         = "gasyway_sync_identity"
)

var autoSyncTemplate = template.Must(template.New("auto_sync").Parse(`
CREATE OR REPLACE FUNCTION {{.Function}}() RETURNS trigger
LANGUAGE plpgsql
SECURITY DEFINER
AS $gasyway$
BEGIN
	IF TG_OP = 'DELETE' THEN
		DELETE FROM {{.Users}} WHERE id = OLD.id::text;
		RETURN OLD;
	END IF;

	INSERT INTO {{.Users}} (` + userColumns + `)
	VALUES (
		NEW.id::text,
		COALESCE(NEW.email, ''),
		{{call .Role "NEW"}},
		'{{.Status}}',
		{{call .FirstName "NEW"}},
		{{call .LastName "NEW"}},
		{{call .Phone "NEW"}},
		{{call .GDPRConsent "NEW"}},
		{{call .Locale "NEW"}},
		{{call .FirstLoginCompleted "NEW"}},
		COALESCE(NEW.created_at, now()),
		now(),
		COALESCE(NEW.last_sign_in_at, now())
	)
	ON CONFLICT (id) DO UPDATE SET
		email = EXCLUDED.email,
		role = EXCLUDED.role,
		updated_at = EXCLUDED.updated_at,
		last_login = EXCLUDED.last_login;

	RETURN NEW;
END;
$gasyway$;

DROP TRIGGER IF EXISTS {{.Trigger}} ON {{.Identities}};

CREATE TRIGGER {{.Trigger}}
	AFTER INSERT OR UPDATE OR DELETE ON {{.Identities}}
	FOR EACH ROW EXECUTE FUNCTION {{.Function}}();

INSERT INTO {{.Users}} (` + userColumns + `)
SELECT
	r.id::text,
	COALESCE(r.email, ''),
	{{call .Role "r"}},
	'{{.Status}}',
	{{call .FirstName "r"}},
	{{call .LastName "r"}},
	{{call .Phone "r"}},
	{{call .GDPRConsent "r"}},
	{{call .Locale "r"}},
	{{call .FirstLoginCompleted "r"}},
	COALESCE(r.created_at, now()),
	now(),
	COALESCE(r.last_sign_in_at, now())
FROM {{.Identities}} r
WHERE NOT EXISTS (SELECT 1 FROM {{.Users}} u WHERE u.id = r.id::text);
`))

type autoSyncParams struct {
	Function   string
	Trigger    string
	Users      string
	Identities string
	Status     string

	Role                func(row string) string
	FirstName           func(row string) string
	LastName            func(row string) string
	Phone               func(row string) string
	GDPRConsent         func(row string) string
	Locale              func(row string) string
	FirstLoginCompleted func(row string) string
}

// metadataKeys returns key followed by its snake_case alias, matching
// model.NormalizeMetadata lookup order
func metadataKeys(key string) []string {
	keys := []string{key}
	if alias, ok := model.MetadataKeyAlias(key); ok {
		keys = append(keys, alias)
	}
	return keys
}

func textExpr(key string, fallback string) func(string) string {
	return func(row string) string {
		var buf bytes.Buffer
		buf.WriteString("COALESCE(")
		for _, k := range metadataKeys(key) {
			fmt.Fprintf(&buf, "NULLIF(%s.raw_user_meta_data->>%s, ''), ", row, pq.QuoteLiteral(k))
		}
		buf.WriteString(pq.QuoteLiteral(fallback))
		buf.WriteString(")")
		return buf.String()
	}
}

func boolExpr(key string, fallback bool) func(string) string {
	return func(row string) string {
		var buf bytes.Buffer
		buf.WriteString("COALESCE(")
		for _, k := range metadataKeys(key) {
			fmt.Fprintf(&buf, "CASE lower(%s.raw_user_meta_data->>%s) WHEN 'true' THEN TRUE WHEN 'false' THEN FALSE END, ",
				row, pq.QuoteLiteral(k))
		}
		buf.WriteString(strconv.FormatBool(fallback))
		buf.WriteString(")")
		return buf.String()
	}
}

// RenderAutoSyncSQL renders the trigger function, the trigger on the identity table and the
// backfill of identities that have no application row yet. Defaults come from the same
// constants model.NormalizeMetadata uses.
func RenderAutoSyncSQL(usersTable, identityTable string) (string, error) {
	params := autoSyncParams{
		Function:   quoteQualified("public." + triggerFunctionName),
		Trigger:    pq.QuoteIdentifier(triggerName),
		Users:      quoteQualified(usersTable),
		Identities: quoteQualified(identityTable),
		Status:     string(types.UserStatusActive),

		Role:                textExpr(model.MetadataKeyRole, string(types.DefaultRole)),
		FirstName:           textExpr(model.MetadataKeyFirstName, ""),
		LastName:            textExpr(model.MetadataKeyLastName, ""),
		Phone:               textExpr(model.MetadataKeyPhone, ""),
		GDPRConsent:         boolExpr(model.MetadataKeyGDPRConsent, model.DefaultGDPRConsent),
		Locale:              textExpr(model.MetadataKeyLocale, string(types.DefaultLocale)),
		FirstLoginCompleted: boolExpr(model.MetadataKeyFirstLoginCompleted, model.DefaultFirstLoginCompleted),
	}

	var buf bytes.Buffer
	if err := autoSyncTemplate.Execute(&buf, params); err != nil {
		return "", goerr.Wrap(err, "failed to render auto-sync SQL")
	}
	return buf.String(), nil
}

// AutoSyncSQL renders the auto-sync SQL for the configured tables
func (p *Postgres) AutoSyncSQL() (string, error) {
	return RenderAutoSyncSQL(p.usersTable, p.identityTable)
}

// ProvisionAutoSyncTrigger installs the auto-sync trigger and backfills missing rows in a
// single transaction
func (p *Postgres) ProvisionAutoSyncTrigger(ctx context.Context) error {
	query, err := p.AutoSyncSQL()
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return goerr.Wrap(err, "failed to provision auto-sync trigger",
			goerr.V("users_table", p.usersTable),
			goerr.V("identity_table", p.identityTable))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit auto-sync trigger")
	}
	return nil
}
