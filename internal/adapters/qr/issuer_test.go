package qr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_Issue(t *testing.T) {
	issuedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	activityEnd := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	iss := NewIssuer(2 * time.Hour)

	token, err := iss.Issue("enr-1", activityEnd, issuedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, token.ID)
	assert.Len(t, token.TokenID, 32)
	assert.Equal(t, "enr-1", token.EnrollmentID)
	assert.Equal(t, issuedAt, token.IssuedAt)
	assert.Equal(t, activityEnd.Add(2*time.Hour), token.ExpiresAt)
	assert.False(t, token.Consumed)
}

func TestIssuer_TokensAreUnique(t *testing.T) {
	iss := NewIssuer(time.Hour)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := iss.Issue("enr-1", time.Now(), time.Now())
		require.NoError(t, err)
		if _, dup := seen[token.TokenID]; dup {
			t.Fatalf("duplicate token ID %q", token.TokenID)
		}
		seen[token.TokenID] = struct{}{}
	}
}
