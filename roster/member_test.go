package roster

import (
	"strings"
	"testing"
	"time"
)

func TestMemberInputValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	valid := MemberInput{
		Name:         "Jane",
		CleanDate:    NewDate(2023, time.June, 15),
		Relationship: RelationshipFriend,
		Program:      ProgramAA,
	}

	tests := []struct {
		name      string
		modify    func(*MemberInput)
		wantField string
	}{
		{"valid input", func(in *MemberInput) {}, ""},
		{"empty relationship and program", func(in *MemberInput) {
			in.Relationship = RelationshipNone
			in.Program = ProgramNone
		}, ""},
		{"clean date today", func(in *MemberInput) { in.CleanDate = NewDate(2024, time.June, 1) }, ""},
		{"missing name", func(in *MemberInput) { in.Name = "" }, "name"},
		{"whitespace name", func(in *MemberInput) { in.Name = "   " }, "name"},
		{"name too long", func(in *MemberInput) { in.Name = strings.Repeat("x", MaxNameLength+1) }, "name"},
		{"missing clean date", func(in *MemberInput) { in.CleanDate = Date{} }, "clean_date"},
		{"future clean date", func(in *MemberInput) { in.CleanDate = NewDate(2024, time.June, 2) }, "clean_date"},
		{"unknown relationship", func(in *MemberInput) { in.Relationship = "roommate" }, "relationship"},
		{"unknown program", func(in *MemberInput) { in.Program = "bowling" }, "recovery_program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.modify(&in)

			err := in.Validate(now)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verr.Field)
			}
			if verr.Message == "" {
				t.Error("expected a human-readable message")
			}
		})
	}
}

func TestRelationshipValid(t *testing.T) {
	known := []Relationship{
		RelationshipNone, RelationshipPartner, RelationshipParent, RelationshipChild,
		RelationshipSibling, RelationshipFriend, RelationshipSponsor, RelationshipSponsee,
		RelationshipOther,
	}
	for _, r := range known {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Relationship("landlord").Valid() {
		t.Error("unknown relationship reported valid")
	}
}
