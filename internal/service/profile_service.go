package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"trackpal/internal/apperr"
	"trackpal/internal/model"
)

// ProfileInput represents data required to create a profile.
type ProfileInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// ProfileService manages profiles and Telegram chat linking.
type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// CreateProfile stores a new profile with a fresh Telegram link code.
func (s *ProfileService) CreateProfile(ctx context.Context, input ProfileInput) (*model.Profile, error) {
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperr.Invalid("email", "email is not a valid address")
		}
	}

	profile := model.Profile{
		Email:            email,
		DisplayName:      normalizeTitle(input.DisplayName),
		TelegramLinkCode: newLinkCode(),
	}
	if err := s.profiles.CreateProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

// LinkTelegram attaches chatID to the profile owning code. The code is
// consumed and a profile previously linked to the chat loses the link.
func (s *ProfileService) LinkTelegram(ctx context.Context, code string, chatID int64) (*model.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Invalid("code", "link code is required")
	}
	profile, err := s.profiles.FindByLinkCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.LinkTelegramChat(ctx, profile.ID, chatID); err != nil {
		return nil, err
	}
	profile.TelegramChatID = chatID
	profile.TelegramLinkCode = ""
	return profile, nil
}

// ProfileForChat resolves the profile linked to a Telegram chat.
func (s *ProfileService) ProfileForChat(ctx context.Context, chatID int64) (*model.Profile, error) {
	return s.profiles.FindByTelegramChat(ctx, chatID)
}

func newLinkCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
