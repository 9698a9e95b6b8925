package devserver

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/users"
	"gopkg.in/yaml.v3"
)

// SeedUser is one entry of the development seed file. Passwords are given in
// the clear and hashed on load; the file never leaves a developer machine.
type SeedUser struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads seed users from a YAML file.
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadSeedFile] read %q", path)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrapf(err, "[LoadSeedFile] parse %q", path)
	}
	return sf.Users, nil
}

// SeedUsers creates the given accounts, skipping entries with an invalid
// role and replacing accounts that already exist.
func (s *Server) SeedUsers(seed []SeedUser) error {
	for _, su := range seed {
		role := users.Role(su.Role)
		if !role.Valid() {
			log.Warn().Str("email", su.Email).Str("role", su.Role).Msg("devserver: skipping seed user with invalid role")
			continue
		}

		hash, err := users.HashPassword(su.Password)
		if err != nil {
			return errors.Wrapf(err, "[Server.SeedUsers] hash password for %q", su.Email)
		}

		user := &users.User{
			Email:        su.Email,
			PasswordHash: hash,
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			Role:         role,
			DateJoined:   time.Now(),
		}
		if err := s.users.Upsert(user); err != nil {
			return errors.Wrapf(err, "[Server.SeedUsers] store %q", su.Email)
		}
		log.Info().Str("email", su.Email).Str("role", su.Role).Msg("devserver: seeded user")
	}
	return nil
}
