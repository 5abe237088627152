package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"yisu_backoffice/internal/domain"
)

// SessionState is the token and cached profile of the signed-in operator.
type SessionState interface {
	Token() string
	SetToken(ctx context.Context, tok string) error
	User() (domain.UserInfo, bool)
	SetUser(u domain.UserInfo)
	Clear(ctx context.Context) error
}

type AuthService struct {
	gw   domain.AuthGateway
	sess SessionState
	sf   singleflight.Group
}

func NewAuthService(gw domain.AuthGateway, sess SessionState) *AuthService {
	return &AuthService{gw: gw, sess: sess}
}

func (a *AuthService) Login(ctx context.Context, email, password string) (domain.UserInfo, error) {
	cr := domain.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := Validate(cr); err != nil {
		return domain.UserInfo{}, err
	}
	res, err := a.gw.Login(ctx, cr)
	if err != nil {
		return domain.UserInfo{}, err
	}
	if res.Token == "" {
		return domain.UserInfo{}, &domain.AppError{Msg: "login response carried no token"}
	}
	if err := a.sess.SetToken(ctx, res.Token); err != nil {
		return domain.UserInfo{}, fmt.Errorf("save session: %w", err)
	}
	u := domain.UserInfo{ID: res.ID, Name: res.Username, Email: cr.Email, Role: res.Role}
	a.sess.SetUser(u)
	log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("logged in")
	return u, nil
}

// Register creates an account; the operator logs in afterwards.
func (a *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) error {
	r := domain.Registration{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
	}
	if err := Validate(r); err != nil {
		return err
	}
	return a.gw.Register(ctx, r)
}

// Guard returns the signed-in user. A token without a cached profile triggers
// one profile fetch shared by all concurrent callers; a failed fetch ends the
// session.
func (a *AuthService) Guard(ctx context.Context) (domain.UserInfo, error) {
	if a.sess.Token() == "" {
		return domain.UserInfo{}, domain.ErrUnauthorized
	}
	if u, ok := a.sess.User(); ok {
		return u, nil
	}

	v, err, _ := a.sf.Do("user_info", func() (any, error) {
		u, err := a.gw.UserInfo(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("fetch user info failed, clearing session")
			_ = a.sess.Clear(ctx)
			return nil, err
		}
		a.sess.SetUser(u)
		return u, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.UserInfo{}, err
		}
		return domain.UserInfo{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	return v.(domain.UserInfo), nil
}

func (a *AuthService) RequireRole(ctx context.Context, role domain.Role) (domain.UserInfo, error) {
	u, err := a.Guard(ctx)
	if err != nil {
		return u, err
	}
	if u.Role != role {
		return u, domain.ErrForbidden
	}
	return u, nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	return a.sess.Clear(ctx)
}
