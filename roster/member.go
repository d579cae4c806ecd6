// Package roster manages the circle-member roster: the people whose
// sobriety progress an account holder supports. The roster is persisted as
// one versioned JSON document in a docstore bucket; every mutation
// round-trips the whole document under optimistic concurrency.
package roster

import (
	"strings"
	"time"
)

// MaxNameLength bounds the display name of a circle member.
const MaxNameLength = 80

// Relationship tags how a circle member relates to the account holder.
// The set is closed; anything the UI can't classify uses RelationshipOther.
type Relationship string

const (
	RelationshipNone    Relationship = ""
	RelationshipPartner Relationship = "partner"
	RelationshipParent  Relationship = "parent"
	RelationshipChild   Relationship = "child"
	RelationshipSibling Relationship = "sibling"
	RelationshipFriend  Relationship = "friend"
	RelationshipSponsor Relationship = "sponsor"
	RelationshipSponsee Relationship = "sponsee"
	RelationshipOther   Relationship = "other"
)

// Valid reports whether r is a known relationship tag. Empty is valid;
// the field is optional.
func (r Relationship) Valid() bool {
	switch r {
	case RelationshipNone, RelationshipPartner, RelationshipParent, RelationshipChild,
		RelationshipSibling, RelationshipFriend, RelationshipSponsor, RelationshipSponsee,
		RelationshipOther:
		return true
	}
	return false
}

// Program tags which recovery program a circle member follows.
type Program string

const (
	ProgramNone      Program = ""
	ProgramAA        Program = "aa"
	ProgramNA        Program = "na"
	ProgramAlAnon    Program = "al-anon"
	ProgramSmart     Program = "smart"
	ProgramCelebrate Program = "celebrate-recovery"
	ProgramOther     Program = "other"
)

// Valid reports whether p is a known program tag. Empty is valid.
func (p Program) Valid() bool {
	switch p {
	case ProgramNone, ProgramAA, ProgramNA, ProgramAlAnon, ProgramSmart,
		ProgramCelebrate, ProgramOther:
		return true
	}
	return false
}

// CircleMember is one person in the roster. ID is assigned at creation and
// immutable; CleanDate is always set for an existing member.
type CircleMember struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CleanDate    Date         `json:"clean_date"`
	Relationship Relationship `json:"relationship,omitempty"`
	Program      Program      `json:"recovery_program,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// MemberInput carries caller-supplied fields for add and edit operations.
type MemberInput struct {
	Name         string
	CleanDate    Date
	Relationship Relationship
	Program      Program
}

// Validate checks the input against the roster's field rules. It returns
// the first violation as a *ValidationError, or nil. now supplies the
// server clock for the future-clean-date check.
func (in MemberInput) Validate(now time.Time) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: "name is too long"}
	}
	if in.CleanDate.IsZero() {
		return &ValidationError{Field: "clean_date", Message: "clean date is required"}
	}
	if in.CleanDate.After(DateOf(now)) {
		return &ValidationError{Field: "clean_date", Message: "clean date cannot be in the future"}
	}
	if !in.Relationship.Valid() {
		return &ValidationError{Field: "relationship", Message: "unknown relationship"}
	}
	if !in.Program.Valid() {
		return &ValidationError{Field: "recovery_program", Message: "unknown recovery program"}
	}
	return nil
}
