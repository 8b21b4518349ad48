package design

import "testing"

func TestNewRoleAssignment(t *testing.T) {
	roles, err := NewRoleAssignment([]string{"U2", "U1"}, []string{"U3"})
	if err != nil {
		t.Fatalf("NewRoleAssignment failed: %v", err)
	}

	drivers := roles.Drivers()
	if len(drivers) != 2 || drivers[0] != "U1" || drivers[1] != "U2" {
		t.Errorf("Drivers() = %v, want [U1 U2]", drivers)
	}
	receivers := roles.Receivers()
	if len(receivers) != 1 || receivers[0] != "U3" {
		t.Errorf("Receivers() = %v, want [U3]", receivers)
	}

	if err := roles.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestRoleAssignmentRejectsBothRoles(t *testing.T) {
	if _, err := NewRoleAssignment([]string{"U1"}, []string{"U1"}); err == nil {
		t.Fatal("expected a component on both sides to be rejected")
	}
}

func TestRoleAssignmentValidate(t *testing.T) {
	tests := []struct {
		name      string
		drivers   []string
		receivers []string
		wantErr   bool
	}{
		{"both sides", []string{"U1"}, []string{"U2"}, false},
		{"no drivers", nil, []string{"U2"}, true},
		{"no receivers", []string{"U1"}, nil, true},
		{"empty", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, err := NewRoleAssignment(tt.drivers, tt.receivers)
			if err != nil {
				t.Fatalf("NewRoleAssignment failed: %v", err)
			}
			err = roles.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("driver"); err != nil || r != RoleDriver {
		t.Errorf("ParseRole(driver) = %v, %v", r, err)
	}
	if r, err := ParseRole("receiver"); err != nil || r != RoleReceiver {
		t.Errorf("ParseRole(receiver) = %v, %v", r, err)
	}
	if _, err := ParseRole("observer"); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestRoleString(t *testing.T) {
	if RoleDriver.String() != "driver" || RoleReceiver.String() != "receiver" {
		t.Errorf("role strings: %s, %s", RoleDriver, RoleReceiver)
	}
}
