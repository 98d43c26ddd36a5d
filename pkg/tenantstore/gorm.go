package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dmitrymomot/multitier/pkg/pg"
	"github.com/dmitrymomot/multitier/pkg/tenant"
)

// tenantRow maps the tenants table for GORM.
type tenantRow struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Slug              string     `gorm:"size:25;not null;uniqueIndex"`
	Domain            string     `gorm:"size:255;not null;default:''"`
	BaseID            *uuid.UUID `gorm:"type:uuid"`
	IsPathPrefix      bool       `gorm:"not null;default:false"`
	IsActive          bool       `gorm:"not null;default:false"`
	Theme             string     `gorm:"size:255;not null;default:''"`
	Extra             string     `gorm:"not null;default:''"`
	DBName            string     `gorm:"column:db_name;size:255;not null;default:''"`
	DBHost            string     `gorm:"column:db_host;size:255;not null;default:''"`
	DBPort            int        `gorm:"column:db_port;not null;default:0"`
	DBUser            string     `gorm:"column:db_user;size:255;not null;default:''"`
	DBPassword        string     `gorm:"column:db_password;not null;default:''"`
	EmailDefaultFrom  string     `gorm:"size:255;not null;default:''"`
	EmailHostUser     string     `gorm:"size:255;not null;default:''"`
	EmailHostPassword string     `gorm:"not null;default:''"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (tenantRow) TableName() string {
	return "tenants"
}

func rowFromTenant(t *tenant.Tenant) tenantRow {
	return tenantRow{
		ID: t.ID, Slug: t.Slug, Domain: strings.ToLower(t.Domain), BaseID: t.BaseID,
		IsPathPrefix: t.IsPathPrefix, IsActive: t.IsActive, Theme: t.Theme, Extra: t.Extra,
		DBName: t.DBName, DBHost: t.DBHost, DBPort: t.DBPort, DBUser: t.DBUser, DBPassword: t.DBPassword,
		EmailDefaultFrom: t.EmailDefaultFrom, EmailHostUser: t.EmailHostUser, EmailHostPassword: t.EmailHostPassword,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func (r tenantRow) toTenant() *tenant.Tenant {
	return &tenant.Tenant{
		ID: r.ID, Slug: r.Slug, Domain: r.Domain, BaseID: r.BaseID,
		IsPathPrefix: r.IsPathPrefix, IsActive: r.IsActive, Theme: r.Theme, Extra: r.Extra,
		DBName: r.DBName, DBHost: r.DBHost, DBPort: r.DBPort, DBUser: r.DBUser, DBPassword: r.DBPassword,
		EmailDefaultFrom: r.EmailDefaultFrom, EmailHostUser: r.EmailHostUser, EmailHostPassword: r.EmailHostPassword,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// GORM is a registry for applications that already manage their schema
// and connections with GORM. It reads the same table as Postgres.
// Open the *gorm.DB with TranslateError so duplicates map to ErrDuplicate.
type GORM struct {
	db *gorm.DB
}

func NewGORM(db *gorm.DB) *GORM {
	return &GORM{db: db}
}

func (s *GORM) Lookup(ctx context.Context, q tenant.Lookup) ([]*tenant.Tenant, error) {
	var rows []tenantRow
	if err := lookupQuery(s.db.WithContext(ctx), q).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lookup tenants: %w", err)
	}
	out := make([]*tenant.Tenant, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toTenant())
	}
	return out, nil
}

func lookupQuery(db *gorm.DB, q tenant.Lookup) *gorm.DB {
	query := db.Where("domain <> '' AND domain = ?", strings.ToLower(q.Host))
	if slugs := q.Slugs(); len(slugs) > 0 {
		query = query.Or("slug IN ?", slugs)
	}
	return query.Order("created_at DESC")
}

func (s *GORM) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	var row tenantRow
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", slug, notFound(err))
	}
	return row.toTenant(), nil
}

func (s *GORM) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	var row tenantRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, notFound(err))
	}
	return row.toTenant(), nil
}

func (s *GORM) Create(ctx context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	row := rowFromTenant(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create tenant %s: %w", t.Slug, duplicate(err))
	}
	t.CreatedAt, t.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (s *GORM) Update(ctx context.Context, t *tenant.Tenant) error {
	if err := t.Validate(); err != nil {
		return err
	}
	row := rowFromTenant(t)
	res := s.db.WithContext(ctx).Model(&tenantRow{ID: t.ID}).
		Select("*").Omit("id", "created_at").Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("update tenant %s: %w", t.Slug, duplicate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update tenant %s: %w", t.Slug, tenant.ErrTenantNotFound)
	}
	t.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *GORM) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&tenantRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete tenant %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete tenant %s: %w", id, tenant.ErrTenantNotFound)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tenant.ErrTenantNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || pg.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// OpenGORM connects GORM to the PostgreSQL database at dsn.
func OpenGORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		PrepareStmt:    true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
