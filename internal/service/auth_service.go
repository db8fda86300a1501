package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/paxiitdevteam/retentionos/config"
	"github.com/paxiitdevteam/retentionos/internal/model/dto"
	"github.com/paxiitdevteam/retentionos/internal/pkg/jwt"
)

// The dashboard has a single operator account defined in config.
const adminAccountID = 1

// AuthService authenticates dashboard logins against the configured admin
// credentials.
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Login checks the credentials and issues a JWT.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Username != s.cfg.Admin.Username {
		return nil, ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PasswordHash), []byte(req.Password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(adminAccountID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: s.cfg.JWT.ExpireHours * 3600,
	}, nil
}
