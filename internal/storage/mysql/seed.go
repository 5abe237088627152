package mysql

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"yisu_backoffice/internal/domain"
	"yisu_backoffice/internal/fixtures"
)

// SeedUsers creates the demo accounts that are missing. Hotels are left to
// the seeder, which submits them through the API.
func (r *Repo) SeedUsers(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	for _, u := range fixtures.Users() {
		u.PasswordHash = hash
		_, err := r.CreateUser(ctx, u)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		log.Info().Str("email", u.Email).Str("role", string(u.Role)).Msg("seeded account")
	}
	return nil
}
