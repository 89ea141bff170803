// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	// MinLength is the minimum number of characters.
	MinLength int

	// MaxBytes caps the encoded length. Zero, or anything above
	// MaxPasswordBytes, means MaxPasswordBytes.
	MaxBytes int

	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool

	// MaxConsecutiveRepeats is the maximum allowed run of one character (0 = disabled).
	MaxConsecutiveRepeats int

	// ForbidNumeric rejects passwords made only of digits.
	ForbidNumeric bool

	// ForbidCommonPasswords blocks well-known breached passwords.
	ForbidCommonPasswords bool

	// ForbidUsernameSimilarity rejects passwords containing the username.
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy is applied to self-service signups.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                8,
		MaxBytes:                 MaxPasswordBytes,
		ForbidNumeric:            true,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// AdminPasswordPolicy is applied to staff accounts created from
// configuration or the admin CLI.
func AdminPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                12,
		MaxBytes:                 MaxPasswordBytes,
		RequireUppercase:         true,
		RequireLowercase:         true,
		RequireDigit:             true,
		RequireSpecial:           true,
		MaxConsecutiveRepeats:    3,
		ForbidNumeric:            true,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// charClasses holds the results of character class analysis.
type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
	allDigits  bool
}

func analyzeCharClasses(password string) charClasses {
	cc := charClasses{allDigits: password != ""}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			cc.hasSpecial = true
		}
		if !unicode.IsDigit(r) {
			cc.allDigits = false
		}
	}
	return cc
}

// maxConsecutiveRepeats returns the longest run of one repeated character.
func maxConsecutiveRepeats(password string) int {
	if len(password) == 0 {
		return 0
	}
	maxRepeats := 1
	currentRepeats := 1
	var lastRune rune
	for i, r := range password {
		if i > 0 && r == lastRune {
			currentRepeats++
			if currentRepeats > maxRepeats {
				maxRepeats = currentRepeats
			}
		} else {
			currentRepeats = 1
		}
		lastRune = r
	}
	return maxRepeats
}

// Check returns every policy violation for password, or nil.
func (p PasswordPolicy) Check(password, username string) []string {
	var problems []string

	if n := utf8.RuneCountInString(password); n < p.MinLength {
		problems = append(problems,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if limit := p.maxBytes(); len(password) > limit {
		problems = append(problems,
			fmt.Sprintf("This password is too long. It must contain at most %d bytes.", limit))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		problems = append(problems, "This password must contain at least one uppercase letter.")
	}
	if p.RequireLowercase && !cc.hasLower {
		problems = append(problems, "This password must contain at least one lowercase letter.")
	}
	if p.RequireDigit && !cc.hasDigit {
		problems = append(problems, "This password must contain at least one digit.")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		problems = append(problems, "This password must contain at least one special character.")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("This password repeats a character more than %d times in a row.", p.MaxConsecutiveRepeats))
	}
	if p.ForbidNumeric && cc.allDigits {
		problems = append(problems, "This password is entirely numeric.")
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "This password is too common.")
	}
	if p.ForbidUsernameSimilarity && username != "" && isSimilarToUsername(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	}
	return problems
}

func (p PasswordPolicy) maxBytes() int {
	if p.MaxBytes <= 0 || p.MaxBytes > MaxPasswordBytes {
		return MaxPasswordBytes
	}
	return p.MaxBytes
}

// CheckError is Check folded into a single error.
func (p PasswordPolicy) CheckError(password, username string) error {
	if problems := p.Check(password, username); len(problems) > 0 {
		return errors.New(strings.Join(problems, " "))
	}
	return nil
}

var commonPasswords = map[string]bool{
	"123456":        true,
	"password":      true,
	"123456789":     true,
	"12345678":      true,
	"1234567890":    true,
	"qwerty":        true,
	"qwertyuiop":    true,
	"abc123":        true,
	"abcd1234":      true,
	"password1":     true,
	"password123":   true,
	"passw0rd":      true,
	"p@ssw0rd":      true,
	"admin123":      true,
	"administrator": true,
	"letmein":       true,
	"letmein123":    true,
	"welcome":       true,
	"welcome1":      true,
	"welcome123":    true,
	"iloveyou":      true,
	"sunshine":      true,
	"trustno1":      true,
	"superman":      true,
	"football":      true,
	"baseball":      true,
	"princess":      true,
	"changeme":      true,
	"1q2w3e4r":      true,
	"1qaz2wsx":      true,
	"11111111":      true,
	"00000000":      true,
	"testing123":    true,
	"bookworm":      true,
	"library":       true,
	"library123":    true,
	"librarian":     true,
	"shelfwise":     true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}

// isSimilarToUsername matches the username, its reverse, or its common
// leetspeak spelling inside the password.
func isSimilarToUsername(password, username string) bool {
	lowerPass := strings.ToLower(password)
	lowerUser := strings.ToLower(username)

	if strings.Contains(lowerPass, lowerUser) || strings.Contains(lowerUser, lowerPass) {
		return true
	}
	if strings.Contains(lowerPass, reverseString(lowerUser)) {
		return true
	}

	substitutions := map[rune]rune{
		'a': '@', 'e': '3', 'i': '1', 'o': '0', 's': '$', 't': '7',
	}
	substituted := strings.Map(func(r rune) rune {
		if sub, ok := substitutions[r]; ok {
			return sub
		}
		return r
	}, lowerUser)
	return strings.Contains(lowerPass, substituted)
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
