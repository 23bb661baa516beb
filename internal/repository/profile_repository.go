package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// ProfileRepository handles CRUD for user profiles and streak counters.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return apperr.Upstream("create profile", err)
	}
	return nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, classify("get profile", "profile", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error; err != nil {
		return nil, apperr.Upstream("list profiles", err)
	}
	return profiles, nil
}

// UpdateProfile applies column updates keyed by column name.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return apperr.Upstream("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("profile")
	}
	return nil
}

func (r *ProfileRepository) FindByLinkCode(ctx context.Context, code string) (*model.Profile, error) {
	if code == "" {
		return nil, apperr.NotFound("profile")
	}
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("telegram_link_code = ?", code).First(&profile).Error; err != nil {
		return nil, classify("find profile by link code", "profile", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByTelegramChat(ctx context.Context, chatID int64) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&profile).Error
	if err != nil {
		return nil, classify(fmt.Sprintf("find profile by chat %d", chatID), "profile", err)
	}
	return &profile, nil
}

// LinkTelegramChat binds chatID to the profile and consumes its link code. Any
// other profile holding the same chat is unbound in the same transaction.
func (r *ProfileRepository) LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Profile{}).
			Where("telegram_chat_id = ? AND id <> ?", chatID, userID).
			Update("telegram_chat_id", 0).Error; err != nil {
			return apperr.Upstream("unlink previous chat owner", err)
		}
		res := tx.Model(&model.Profile{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"telegram_chat_id":   chatID,
			"telegram_link_code": "",
		})
		if res.Error != nil {
			return apperr.Upstream("link telegram chat", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("profile")
		}
		return nil
	})
}
