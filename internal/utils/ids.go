package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Lowercase alphanumerics only: mailbox local parts must be valid on every
// upstream provider, and several of them reject uppercase or symbols.
const localPartAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateNanoID() string {
	return GenerateNanoIDWithPrefix("", 21)
}

func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(localPartAlphabet, length)
	if err != nil {
		panic(err)
	}
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// RandomLocalPart generates a collision-resistant local part for a randomly
// provisioned mailbox.
func RandomLocalPart() string {
	local, err := gonanoid.Generate(localPartAlphabet, 10)
	if err != nil {
		panic(err)
	}
	return local
}

// RandomPassword generates a throwaway credential for providers that require
// account registration.
func RandomPassword() string {
	password, err := gonanoid.Generate(passwordAlphabet, 16)
	if err != nil {
		panic(err)
	}
	return password
}
