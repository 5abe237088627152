package memory

import (
	"golang.org/x/crypto/bcrypt"

	"yisu_backoffice/internal/fixtures"
)

// Seed loads the demo accounts and hotels. Every account gets password.
func (s *Store) Seed(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	users := fixtures.Users()
	for i := range users {
		users[i].PasswordHash = hash
	}
	s.Load(users, fixtures.Hotels())
	return nil
}
