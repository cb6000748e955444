package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// userRecord is the users table row.
type userRecord struct {
	ID           string     `gorm:"type:char(36);primaryKey"`
	Username     string     `gorm:"size:191;uniqueIndex;not null"`
	Name         string     `gorm:"size:255;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	RoleID       int        `gorm:"not null;default:1"`
	ArchivedAt   *time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

// BeforeCreate sets the UUID before the row is inserted.
func (r *userRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func fromDomain(u *domain.User) *userRecord {
	return &userRecord{
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		RoleID:       int(u.Role),
		ArchivedAt:   u.ArchivedAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRecord) toDomain() *domain.User {
	u := &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.RoleID),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if r.ArchivedAt != nil {
		at := r.ArchivedAt.UTC()
		u.ArchivedAt = &at
	}
	return u
}

// UserRepository implements ports.UserRepository on GORM. Username
// uniqueness is the table's unique index.
type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate creates or updates the users table.
func (r *UserRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&userRecord{})
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	rec := fromDomain(user)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*domain.User, 0, len(recs))
	for i := range recs {
		users = append(users, recs[i].toDomain())
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	changes := map[string]any{"updated_at": r.now()}
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.PasswordHash != nil {
		changes["password_hash"] = *patch.PasswordHash
	}
	if patch.Role != nil {
		changes["role_id"] = int(*patch.Role)
	}

	var updated *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userRecord{}).
			Where("id = ? AND archived_at IS NULL", id).
			Updates(changes)
		if res.Error != nil {
			return fmt.Errorf("update user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}

		var rec userRecord
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		updated = rec.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *UserRepository) Archive(ctx context.Context, id string) (bool, error) {
	now := r.now()
	res := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("id = ? AND archived_at IS NULL", id).
		Updates(map[string]any{"archived_at": now, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("archive user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) Restore(ctx context.Context, id string) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("id = ? AND archived_at IS NOT NULL", id).
		Updates(map[string]any{"archived_at": gorm.Expr("NULL"), "updated_at": r.now()})
	if res.Error != nil {
		return nil, fmt.Errorf("restore user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

// Ping satisfies the readiness probe.
func (r *UserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
