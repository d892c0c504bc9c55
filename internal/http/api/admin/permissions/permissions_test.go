package permissions

import (
	"testing"

	"gorm.io/datatypes"
)

func TestRouteMapCoversEveryWhitelistRoute(t *testing.T) {
	t.Parallel()

	routeMap := RouteMap()
	required := map[string]string{
		"GET /birthdate-ban-whitelist":                   CanAccess,
		"GET /birthdate-ban-whitelist/view":              CanAccess,
		"GET /birthdate-ban-whitelist/create":            CanCreate,
		"POST /birthdate-ban-whitelist/store":            CanSave,
		"GET /birthdate-ban-whitelist/edit/:t/:package":  CanEdit,
		"PUT /birthdate-ban-whitelist/update/:t/:id":     CanUpdate,
		"PATCH /birthdate-ban-whitelist/update/:t/:id":   CanUpdate,
		"DELETE /birthdate-ban-whitelist/destroy/:t/:id": CanDelete,
	}
	for key, want := range required {
		key, want := key, want
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			if got := routeMap[key]; got != want {
				t.Fatalf("RouteMap()[%q] = %q, want %q", key, got, want)
			}
		})
	}
}

func TestActorCan(t *testing.T) {
	t.Parallel()

	staff := Actor{Capabilities: []string{CanAccess}}
	if !staff.Can(CanAccess) {
		t.Fatalf("expected staff to hold %q", CanAccess)
	}
	if staff.Can(CanDelete) {
		t.Fatalf("expected staff to lack %q", CanDelete)
	}
	admin := Actor{IsAdmin: true}
	if !admin.Can(CanDelete) {
		t.Fatalf("expected admin override to grant %q", CanDelete)
	}
}

func TestNormalizeAndParsePermissions(t *testing.T) {
	t.Parallel()

	got := NormalizePermissions([]string{" Access  Birthdate Ban Whitelist ", "access birthdate ban whitelist", ""})
	if len(got) != 1 || got[0] != CanAccess {
		t.Fatalf("unexpected normalized permissions: %v", got)
	}
	if errValidate := ValidatePermissions(got); errValidate != nil {
		t.Fatalf("validate: %v", errValidate)
	}
	if errValidate := ValidatePermissions([]string{"fly"}); errValidate == nil {
		t.Fatalf("expected unknown capability to fail validation")
	}

	raw, errMarshal := MarshalPermissions(got)
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	parsed := ParsePermissions(datatypes.JSON(raw))
	if len(parsed) != 1 || parsed[0] != CanAccess {
		t.Fatalf("unexpected parsed permissions: %v", parsed)
	}
	if parsed := ParsePermissions(datatypes.JSON(`not json`)); len(parsed) != 0 {
		t.Fatalf("expected malformed permissions to parse as empty, got %v", parsed)
	}
}
