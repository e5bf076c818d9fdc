// Package account creates shows and checks owner credentials.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	showTokenLength = 25
	minPassword     = 8
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSignup      = errors.New("show name, email and a password of at least 8 characters are required")
)

type Service struct {
	shows  repository.ShowRepository
	logger *zap.Logger

	// Cost is the bcrypt cost for new passwords.
	Cost int
}

func NewService(shows repository.ShowRepository, logger *zap.Logger) *Service {
	return &Service{shows: shows, logger: logger, Cost: bcrypt.DefaultCost}
}

type SignupInput struct {
	ShowName string
	Email    string
	Password string
}

// Signup creates a show with default preferences. The subdomain is the
// show name lowercased with whitespace removed.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.Show, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	subdomain := Subdomain(in.ShowName)
	if subdomain == "" || email == "" || len(in.Password) < minPassword {
		return nil, ErrInvalidSignup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	show := &models.Show{
		ShowToken:     newShowToken(),
		ShowName:      strings.TrimSpace(in.ShowName),
		ShowSubdomain: subdomain,
		Email:         email,
		PasswordHash:  string(hash),
		ShowRole:      RoleUser,
		Preferences: models.Preferences{
			ViewerControlMode: models.ViewerControlModeJukebox,
		},
		Sequences:         []models.Sequence{},
		SequenceGroups:    []models.SequenceGroup{},
		Requests:          []models.Request{},
		Votes:             []models.Vote{},
		ShowNotifications: []models.ShowNotification{},
	}

	if err := s.shows.Create(ctx, show); err != nil {
		if errors.Is(err, repository.ErrShowExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create show: %w", err)
	}

	s.logger.Info("show created",
		zap.String("show_token", show.ShowToken),
		zap.String("show_subdomain", show.ShowSubdomain),
	)
	return show, nil
}

// Login returns the show owned by email if password matches. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Show, error) {
	show, err := s.shows.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get show: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(show.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return show, nil
}

func Subdomain(showName string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, showName))
}

func newShowToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:showTokenLength]
}
