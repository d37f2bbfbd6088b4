package fake

import (
	"strings"
	"testing"
)

func TestNewIdentityFieldsPopulated(t *testing.T) {
	id, err := NewIdentity()
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}

	if id.FirstName == "" || id.LastName == "" {
		t.Errorf("missing name: %+v", id)
	}
	if !strings.Contains(id.Email, "@") {
		t.Errorf("Email = %q, want an address", id.Email)
	}
	if !strings.HasPrefix(id.Phone, "+1-") {
		t.Errorf("Phone = %q, want +1- prefix", id.Phone)
	}
	if !strings.Contains(id.Phone, "-555-01") {
		t.Errorf("Phone = %q, want fictional 555-01xx range", id.Phone)
	}
	if len(id.ZipCode) != 5 {
		t.Errorf("ZipCode = %q, want 5 digits", id.ZipCode)
	}
	if id.Street == "" || id.City == "" || id.Country == "" {
		t.Errorf("missing address: %+v", id)
	}
}

func TestNewIdentityEmailMatchesName(t *testing.T) {
	id, err := NewIdentity()
	if err != nil {
		t.Fatalf("NewIdentity: %v", err)
	}

	local := strings.Split(id.Email, "@")[0]
	if !strings.HasPrefix(local, strings.ToLower(id.FirstName)+"."+strings.ToLower(id.LastName)) {
		t.Errorf("Email local part %q does not match name %s %s", local, id.FirstName, id.LastName)
	}
}

func TestNewIdentityVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := NewIdentity()
		if err != nil {
			t.Fatalf("NewIdentity: %v", err)
		}
		seen[id.Email] = true
	}
	if len(seen) < 2 {
		t.Error("expected generated identities to vary")
	}
}
