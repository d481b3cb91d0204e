package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrInvalidCredentials, ErrUnauthenticated},
		{ErrInvalidToken, ErrUnauthenticated},
		{ErrUserExists, ErrConflict},
		{ErrAdminExists, ErrPolicy},
		{ErrAdminRequired, ErrForbidden},
		{ErrNoFaceDetected, ErrLiveness},
		{ErrFaceMismatch, ErrLiveness},
		{ErrFolderNotFound, ErrNotFound},
		{ErrFolderNotEmpty, ErrConflict},
		{ErrFolderNameAmbiguous, ErrConflict},
		{ErrRootFolderProtected, ErrPolicy},
		{ErrRootFolderNotCreated, ErrInternal},
		{ErrFileExists, ErrConflict},
		{ErrContentBroken, ErrInternal},
		{Invalid("name %q too short", "ab"), ErrValidation},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%q should be of kind %q", tc.err, tc.kind)
		}
		if !errors.Is(fmt.Errorf("wrapped: %w", tc.err), tc.kind) {
			t.Fatalf("wrapping must keep the kind of %q", tc.err)
		}
	}

	if errors.Is(ErrFileExists, ErrNotFound) {
		t.Fatalf("an error carries exactly one kind")
	}
	if got := Invalid("name %q too short", "ab").Error(); got != `name "ab" too short` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestIsValidID(t *testing.T) {
	cases := map[string]bool{
		"65f000000000000000000001": true,
		"65F0000000000000000000AA": true,
		"65f00000000000000000001":  false,
		"65f0000000000000000000zz": false,
		"":                         false,
	}
	for id, want := range cases {
		if got := IsValidID(id); got != want {
			t.Fatalf("IsValidID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestAllowedContentType(t *testing.T) {
	for _, ct := range []string{ContentTypeJPEG, ContentTypePNG, ContentTypePDF} {
		if !AllowedContentType(ct) {
			t.Fatalf("%s should be allowed", ct)
		}
	}
	for _, ct := range []string{"text/plain", "image/gif", ""} {
		if AllowedContentType(ct) {
			t.Fatalf("%q should be rejected", ct)
		}
	}
}

func TestClaimsActor(t *testing.T) {
	c := Claims{Subject: "rootadmin", Role: RoleAdmin}
	if a := c.Actor(); a.Username != "rootadmin" || !a.IsAdmin() {
		t.Fatalf("unexpected actor %+v", a)
	}
	if (Actor{Role: RoleUser}).IsAdmin() {
		t.Fatalf("user must not be admin")
	}
	if !ValidRole(RoleUser) || ValidRole("owner") {
		t.Fatalf("unexpected role validation")
	}
}

func TestFolderIsRoot(t *testing.T) {
	if !(&Folder{Name: RootFolderName}).IsRoot() {
		t.Fatalf("folder without parent is the root")
	}
	if (&Folder{Name: "Reports", ParentID: "65f000000000000000000001"}).IsRoot() {
		t.Fatalf("folder with parent is not the root")
	}
}
