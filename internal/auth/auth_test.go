package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken("user-1", "ada@example.com", "secret")
	if _, err := ParseToken(token, "other"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", "secret"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword("hunter22", hash) {
		t.Fatal("correct password should verify")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password should not verify")
	}
}
