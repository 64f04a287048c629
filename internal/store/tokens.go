package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plashmag/editorial/internal/models"
)

type RememberTokens struct {
	DB *gorm.DB
}

// Upsert replaces any previous token for the user. Concurrent logins race on
// this row; the later write wins and the earlier token becomes unusable,
// which is the accepted outcome.
func (r *RememberTokens) Upsert(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	record := models.RememberToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at"}),
		}).
		Create(&record).Error
}

// FindUserByToken resolves a presented token to its user, filtered to
// unexpired tokens and active users in one query, as the original join did.
func (r *RememberTokens) FindUserByToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN remember_tokens ON remember_tokens.user_id = users.id").
		Where("remember_tokens.token = ? AND remember_tokens.expires_at > ? AND users.status = ?",
			token, now, models.StatusActive).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteByToken removes a token row found expired or orphaned during lookup.
func (r *RememberTokens) DeleteByToken(ctx context.Context, token string) error {
	return r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RememberToken{}).Error
}

func (r *RememberTokens) DeleteForUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RememberToken{}).Error
}
