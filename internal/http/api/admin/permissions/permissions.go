package permissions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
)

// WhitelistModule is the module name shared by every whitelist capability.
const WhitelistModule = "birthdate ban whitelist"

// Whitelist capabilities. Each is "<verb> birthdate ban whitelist".
const (
	CanAccess = "access " + WhitelistModule
	CanCreate = "create " + WhitelistModule
	CanEdit   = "edit " + WhitelistModule
	CanDelete = "delete " + WhitelistModule
	CanSave   = "save " + WhitelistModule
	CanUpdate = "update " + WhitelistModule
)

// Definition describes a capability and the routes it guards.
type Definition struct {
	Key    string   // Capability name stored on admin accounts.
	Label  string   // Human readable label.
	Module string   // Owning module.
	Routes []string // Route keys, see Key.
}

// Key builds the route key used to look up a capability for a request.
func Key(method, path string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(path)
}

// whitelistBase is the whitelist route group relative to the admin prefix.
const whitelistBase = "/birthdate-ban-whitelist"

var definitions = []Definition{
	{Key: CanAccess, Label: "List whitelisted users", Module: WhitelistModule, Routes: []string{
		Key("GET", whitelistBase),
		Key("GET", whitelistBase+"/view"),
	}},
	{Key: CanCreate, Label: "Open the whitelist form", Module: WhitelistModule, Routes: []string{
		Key("GET", whitelistBase+"/create"),
	}},
	{Key: CanSave, Label: "Whitelist a user", Module: WhitelistModule, Routes: []string{
		Key("POST", whitelistBase+"/store"),
	}},
	{Key: CanEdit, Label: "Open the package form", Module: WhitelistModule, Routes: []string{
		Key("GET", whitelistBase+"/edit/:t/:package"),
	}},
	{Key: CanUpdate, Label: "Update a package", Module: WhitelistModule, Routes: []string{
		Key("PUT", whitelistBase+"/update/:t/:id"),
		Key("PATCH", whitelistBase+"/update/:t/:id"),
	}},
	{Key: CanDelete, Label: "Remove a whitelisted user", Module: WhitelistModule, Routes: []string{
		Key("DELETE", whitelistBase+"/destroy/:t/:id"),
	}},
}

// Definitions returns all capability definitions.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// DefinitionMap indexes definitions by capability name.
func DefinitionMap() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}

// RouteMap indexes capability names by route key relative to the admin prefix.
func RouteMap() map[string]string {
	out := make(map[string]string)
	for _, def := range definitions {
		for _, route := range def.Routes {
			out[route] = def.Key
		}
	}
	return out
}

// NormalizePermissions trims, lowercases and de-duplicates capability names.
func NormalizePermissions(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		name := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidatePermissions rejects capability names outside the catalogue.
func ValidatePermissions(in []string) error {
	known := DefinitionMap()
	for _, name := range in {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("permissions: unknown capability %q", name)
		}
	}
	return nil
}

// MarshalPermissions encodes capability names for storage.
func MarshalPermissions(in []string) ([]byte, error) {
	if in == nil {
		in = []string{}
	}
	return json.Marshal(in)
}

// ParsePermissions decodes stored capability names. Malformed data yields none.
func ParsePermissions(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return NormalizePermissions(out)
}
