package auth

import (
	"fmt"

	"github.com/ferrara94/CashCard-Microservice/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// RoleCardOwner is the role required to reach the card endpoints at all.
// It is unrelated to owning any particular card.
const RoleCardOwner = "CARD-OWNER"

// Principal is an authenticated identity attached to the request context.
type Principal struct {
	Username string
	Role     string
}

type user struct {
	passwordHash []byte
	role         string
}

// Store holds the fixed principal set. It is built once at startup from
// configuration and is read-only afterwards, so no locking is needed.
type Store struct {
	users map[string]user
}

// NewStore hashes the configured plaintext passwords and builds the
// in-memory credential set.
func NewStore(users []config.UserConfig, bcryptCost int) (*Store, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	s := &Store{users: make(map[string]user, len(users))}
	for _, u := range users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("user %q: username and password are required", u.Username)
		}
		if _, exists := s.users[u.Username]; exists {
			return nil, fmt.Errorf("duplicate user %q", u.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %q: %w", u.Username, err)
		}
		s.users[u.Username] = user{passwordHash: hash, role: u.Role}
	}
	return s, nil
}

// Verify checks username/password against the stored hash and returns the
// matching principal. Unknown users and wrong passwords are not
// distinguished.
func (s *Store) Verify(username, password string) (*Principal, bool) {
	u, ok := s.users[username]
	if !ok {
		// burn a comparison anyway so unknown users cost the same
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, false
	}
	return &Principal{Username: username, Role: u.role}, true
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to keep
// verification timing flat for unknown usernames.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("cashcard-dummy-credential"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
