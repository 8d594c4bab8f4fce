package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"gorm.io/gorm"
)

// Identity is what the auth layer knows about the caller
type Identity struct {
	Subject     string
	Email       string
	Name        string
	AccessToken string
}

// CustomerService maps authenticated identities to local users
type CustomerService struct {
	db       *gorm.DB
	userInfo UserInfoFetcher
}

// NewCustomerService creates a customer service; userInfo may be nil
func NewCustomerService(db *gorm.DB, userInfo UserInfoFetcher) *CustomerService {
	return &CustomerService{db: db, userInfo: userInfo}
}

// Resolve finds the user for id.Subject, creating one on first sight. Email and
// name come from the token claims, then from /userinfo when the token lacks them.
func (s *CustomerService) Resolve(ctx context.Context, id Identity) (*models.User, error) {
	if id.Subject == "" {
		return nil, errors.New("identity has no subject")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("auth0_id = ?", id.Subject).First(&user).Error
	switch {
	case err == nil:
		if user.Email == "" {
			s.fillProfile(ctx, &id)
			if id.Email != "" {
				if err := s.db.WithContext(ctx).Model(&user).Update("email", id.Email).Error; err != nil {
					return nil, fmt.Errorf("failed to update user email: %w", err)
				}
			}
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	s.fillProfile(ctx, &id)
	user = models.User{
		Auth0ID: id.Subject,
		Email:   id.Email,
		Name:    displayName(id),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("Created user", "user_id", user.ID, "auth0_id", user.Auth0ID)
	return &user, nil
}

func (s *CustomerService) fillProfile(ctx context.Context, id *Identity) {
	if id.Email != "" || s.userInfo == nil || id.AccessToken == "" {
		return
	}
	info, err := s.userInfo.GetUserInfo(ctx, id.AccessToken)
	if err != nil {
		slog.Warn("Failed to fetch user info", "auth0_id", id.Subject, "error", err)
		return
	}
	id.Email = info.Email
	if id.Name == "" {
		id.Name = info.Name
	}
}

func displayName(id Identity) string {
	if id.Name != "" {
		return id.Name
	}
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		return local
	}
	return id.Subject
}
