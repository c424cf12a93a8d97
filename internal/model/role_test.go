package model

import "testing"

// TestCanRemove_FullMatrix pins the entire removal capability table.
// Every (actor, target) pair is listed so a change to the table shows up as
// an explicit test diff, not a silently shifted comparison.
func TestCanRemove_FullMatrix(t *testing.T) {
	tests := []struct {
		actor  Role
		target Role
		want   bool
	}{
		{RoleOwner, RoleOwner, false}, // owners are never removable
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleMember, true},
		{RoleAdmin, RoleOwner, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleMember, true},
		{RoleMember, RoleOwner, false},
		{RoleMember, RoleAdmin, false},
		{RoleMember, RoleMember, false},
	}

	for _, tt := range tests {
		if got := tt.actor.CanRemove(tt.target); got != tt.want {
			t.Errorf("%s.CanRemove(%s) = %v, want %v", tt.actor, tt.target, got, tt.want)
		}
	}
}

func TestCanRemove_UnknownRole(t *testing.T) {
	if Role("superuser").CanRemove(RoleMember) {
		t.Error("unknown role should have no removal rights")
	}
	if RoleOwner.CanRemove(Role("ghost")) {
		t.Error("unknown target role should not be removable")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"owner", RoleOwner, true},
		{"admin", RoleAdmin, true},
		{"member", RoleMember, true},
		{"", "", false},
		{"Owner", "", false}, // case-sensitive on purpose — the DB stores lowercase
		{"superadmin", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCanManage(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleAdmin} {
		if !role.CanManageProject() {
			t.Errorf("%s.CanManageProject() = false, want true", role)
		}
		if !role.CanManageSnippets() {
			t.Errorf("%s.CanManageSnippets() = false, want true", role)
		}
	}
	if RoleMember.CanManageProject() {
		t.Error("member must not manage the project")
	}
	if RoleMember.CanManageSnippets() {
		t.Error("member must not manage others' snippets")
	}
}

func TestIn(t *testing.T) {
	if !RoleAdmin.In(RoleOwner, RoleAdmin) {
		t.Error("admin should match {owner, admin}")
	}
	if RoleMember.In(RoleOwner, RoleAdmin) {
		t.Error("member should not match {owner, admin}")
	}
	if RoleOwner.In() {
		t.Error("empty set should match nothing")
	}
}
