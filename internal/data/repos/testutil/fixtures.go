package testutil

import (
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
)

// SeedUser inserts a user whose password is "secret123".
func SeedUser(tb testing.TB, db *gorm.DB, email, role string) *types.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &types.User{ID: uuid.New(), Email: email, PasswordHash: string(hash), Role: role}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProperty(tb testing.TB, db *gorm.DB, p *types.Property) *types.Property {
	tb.Helper()
	if p.Status == "" {
		p.Status = "ATIVO"
	}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed property: %v", err)
	}
	return p
}

func SeedLead(tb testing.TB, db *gorm.DB, l *types.Lead) *types.Lead {
	tb.Helper()
	if l.Status == "" {
		l.Status = "NOVO"
	}
	if l.Origin == "" {
		l.Origin = "Site"
	}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed lead: %v", err)
	}
	return l
}
