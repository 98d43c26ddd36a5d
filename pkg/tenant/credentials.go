package tenant

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/multitier/pkg/logger"
	"github.com/dmitrymomot/multitier/pkg/secrets"
)

// Credentials reads and writes the encrypted fields of a Tenant.
// Values are sealed with the application key scoped to the tenant ID.
// Without an application key values are stored as plain text.
type Credentials struct {
	appKey []byte
	logger *slog.Logger
}

// NewCredentials creates a Credentials accessor. A nil logger uses slog.Default.
func NewCredentials(appKey []byte, log *slog.Logger) *Credentials {
	if log == nil {
		log = slog.Default()
	}
	return &Credentials{appKey: appKey, logger: log}
}

// DBPassword returns the decrypted database password, or an empty string
// when it is unset or cannot be decrypted.
func (c *Credentials) DBPassword(ctx context.Context, t *Tenant) string {
	return c.reveal(ctx, t, "db_password", t.DBPassword)
}

// EmailHostPassword returns the decrypted SMTP password, or an empty string
// when it is unset or cannot be decrypted.
func (c *Credentials) EmailHostPassword(ctx context.Context, t *Tenant) string {
	return c.reveal(ctx, t, "email_host_password", t.EmailHostPassword)
}

func (c *Credentials) SetDBPassword(t *Tenant, raw string) error {
	v, err := c.seal(t, raw)
	if err != nil {
		return err
	}
	t.DBPassword = v
	return nil
}

func (c *Credentials) SetEmailHostPassword(t *Tenant, raw string) error {
	v, err := c.seal(t, raw)
	if err != nil {
		return err
	}
	t.EmailHostPassword = v
	return nil
}

func (c *Credentials) seal(t *Tenant, raw string) (string, error) {
	if raw == "" || len(c.appKey) == 0 {
		return raw, nil
	}
	return secrets.EncryptString(c.appKey, t.ID[:], raw)
}

// reveal never fails: a value that cannot be decrypted with the current key
// is logged and treated as absent.
func (c *Credentials) reveal(ctx context.Context, t *Tenant, field, value string) string {
	if value == "" || len(c.appKey) == 0 {
		return value
	}
	plain, err := secrets.DecryptString(c.appKey, t.ID[:], value)
	if err != nil {
		c.logger.ErrorContext(ctx, "cannot read tenant secret",
			logger.Tenant(t.Slug),
			slog.String("field", field),
			logger.Error(err),
		)
		return ""
	}
	return plain
}
