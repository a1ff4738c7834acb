package session

import (
	"VPN-Admin-dashboard/internal/db"
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

// GormStore keeps tokens in the admin_sessions table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

func (s *GormStore) Load(ctx context.Context, key string) (string, error) {
	var row db.AdminSession
	err := s.db.WithContext(ctx).
		Where("key = ? AND (expires_at = 0 OR expires_at > ?)", key, time.Now().Unix()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Token, nil
}

func (s *GormStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	row := db.AdminSession{Key: key, Token: token, CreatedAt: time.Now().Unix()}
	if ttl > 0 {
		row.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "created_at"}),
		}).
		Create(&row).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&db.AdminSession{}).Error
}

func (s *GormStore) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at > 0 AND expires_at < ?", time.Now().Unix()).
		Delete(&db.AdminSession{})
	return res.RowsAffected, res.Error
}
