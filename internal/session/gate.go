// Package session authenticates inbound connection attempts. No socket
// may join a room without passing the gate first.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is a verified connecting principal.
type Identity struct {
	UserID      string
	DisplayName string
	Role        Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Gate verifies HMAC-signed bearer tokens and mints them for the login
// endpoint.
type Gate struct {
	secret []byte
	ttl    time.Duration
}

func NewGate(secret string, ttl time.Duration) *Gate {
	return &Gate{secret: []byte(secret), ttl: ttl}
}

// Authenticate turns a raw credential into a verified Identity or fails
// with one of the three credential errors.
func (g *Gate) Authenticate(rawCredential string) (Identity, error) {
	rawCredential = strings.TrimSpace(strings.TrimPrefix(rawCredential, "Bearer "))
	if rawCredential == "" {
		return Identity{}, ErrMissingCredential
	}

	token, err := jwt.Parse(rawCredential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredCredential
		}
		return Identity{}, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidCredential
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrInvalidCredential
	}

	name, _ := claims["name"].(string)
	role := RoleUser
	if r, ok := claims["role"].(string); ok && Role(r) == RoleAdmin {
		role = RoleAdmin
	}

	return Identity{UserID: userID, DisplayName: name, Role: role}, nil
}

// Issue signs a token for the identity, used by the login endpoint.
func (g *Gate) Issue(id Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.UserID,
		"name": id.DisplayName,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(g.ttl).Unix(),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
