package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestToken_RoundTrip(t *testing.T) {
	signer, err := NewSigner(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	cred := testCredential()
	cred.Signature = signer.Sign(cred)

	token, err := EncodeToken(cred)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}
	decoded, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if decoded.SubjectID != cred.SubjectID || decoded.DeviceFingerprint != cred.DeviceFingerprint {
		t.Fatalf("decoded credential mismatch: %+v", decoded)
	}
	if !decoded.IssuedAt.Equal(cred.IssuedAt) || !decoded.ExpiresAt.Equal(cred.ExpiresAt) {
		t.Fatalf("timestamps must survive the round trip")
	}
	if !signer.Verify(decoded) {
		t.Fatalf("decoded credential must still verify")
	}
}

func TestDecodeToken_Malformed(t *testing.T) {
	cases := []string{
		"",
		"no-dot-here",
		".leading-dot",
		"trailing-dot.",
		"!!!.AAAA",
		"AAAA.!!!",
	}
	for _, token := range cases {
		if _, err := DecodeToken(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestDecodeToken_TamperedPayload(t *testing.T) {
	signer, _ := NewSigner(bytes.Repeat([]byte{0x42}, 32))
	cred := testCredential()
	cred.Signature = signer.Sign(cred)
	token, err := EncodeToken(cred)
	if err != nil {
		t.Fatalf("encode token: %v", err)
	}

	dot := strings.IndexByte(token, '.')
	tampered := "eyJzdWIiOiJhdHRhY2tlciJ9" + token[dot:]
	decoded, err := DecodeToken(tampered)
	if err != nil {
		// Garbled JSON is fine too; either way the token is unusable.
		return
	}
	if signer.Verify(decoded) {
		t.Fatalf("tampered payload must not verify")
	}
}
