package util

import (
	"testing"
	"time"

	"lms_backend/internal/model"
)

const testSecret = "jwt-test-secret"

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Role: model.Instructor, Email: "teach@example.com"}
	user.ID = 42

	token, err := GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, testSecret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Instructor || claims.Email != "teach@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Role: model.Learner}
	user.ID = 1

	token, err := GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "another-secret"); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	user := &model.User{Role: model.Learner}
	user.ID = 1

	token, err := GenerateJWT(user, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, testSecret); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestJWTRejectsUnknownRole(t *testing.T) {
	user := &model.User{Role: model.Role("superuser")}
	user.ID = 1

	token, err := GenerateJWT(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, testSecret); err == nil {
		t.Error("token carrying an unknown role must be rejected")
	}
}
