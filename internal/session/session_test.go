package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagar7778/emailtemp/internal/models"
)

func TestMaterialize_StripsCredentials(t *testing.T) {
	// Arrange
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	internal := &models.Mailbox{
		ID:        "acct-1",
		Address:   "cool@mail.tm",
		CreatedAt: created,
		Provider:  "mailtm",
		Secret: &models.MailboxSecret{
			ID:           "acct-1",
			Password:     "hunter2-hunter2",
			Token:        "eyJhbGciOiJIUzI1NiJ9.payload.sig",
			TokenExpires: created.Add(time.Hour),
		},
	}

	// Act
	external := Materialize(internal)

	// Assert
	require.NotNil(t, external)
	assert.Equal(t, "acct-1", external.ID)
	assert.Equal(t, "cool@mail.tm", external.Address)
	assert.Equal(t, created, external.CreatedAt)
	assert.Equal(t, "mailtm", external.Provider)
	assert.Nil(t, external.Secret)
	require.NotNil(t, external.SecretRef)
	assert.Equal(t, "acct-1", external.SecretRef.ID)

	// the serialized form must not leak any credential material
	raw, err := json.Marshal(external)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "eyJhbGciOiJIUzI1NiJ9")
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "token")
}

func TestMaterialize_Idempotent(t *testing.T) {
	// Arrange
	internal := &models.Mailbox{
		ID:       "abc123",
		Address:  "abc123@1secmail.com",
		Provider: "onesec",
	}

	// Act
	once := Materialize(internal)
	twice := Materialize(once)

	// Assert
	assert.Equal(t, once, twice)
}

func TestMaterialize_NoSecretMeansNoRef(t *testing.T) {
	internal := &models.Mailbox{
		ID:       "abc123",
		Address:  "abc123@1secmail.com",
		Provider: "onesec",
	}

	external := Materialize(internal)

	assert.Nil(t, external.Secret)
	assert.Nil(t, external.SecretRef)
}

func TestMaterialize_Nil(t *testing.T) {
	assert.Nil(t, Materialize(nil))
}

func TestMaterialize_DoesNotAliasInput(t *testing.T) {
	// Arrange
	internal := &models.Mailbox{
		ID:       "acct-9",
		Address:  "x@mail.tm",
		Provider: "mailtm",
		Secret:   &models.MailboxSecret{ID: "acct-9", Password: "p"},
	}

	// Act
	external := Materialize(internal)
	external.Address = "mutated@mail.tm"
	external.SecretRef.ID = "mutated"

	// Assert
	assert.Equal(t, "x@mail.tm", internal.Address)
	assert.Equal(t, "acct-9", internal.Secret.ID)
}
