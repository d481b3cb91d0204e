package handler

import (
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		name string
		req  any
		want string
	}{
		{"blank name", &createFolderRequest{Name: "  ", ParentFolderID: "65f000000000000000000001"}, "name is required"},
		{"missing parent", &createFolderRequest{Name: "Reports"}, "parent_folder_id is required"},
		{"short parent", &createFolderRequest{Name: "Reports", ParentFolderID: "65f0"}, "parent_folder_id must be exactly 24 characters"},
		{"non hex parent", &createFolderRequest{Name: "Reports", ParentFolderID: "zzzzzzzzzzzzzzzzzzzzzzzz"}, "parent_folder_id must be a hexadecimal id"},
	}
	for _, tc := range cases {
		err := v.Validate(tc.req)
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		if err.Error() != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, err.Error())
		}
	}

	if err := v.Validate(&createFolderRequest{Name: "Reports", ParentFolderID: "65f000000000000000000001"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}
