package commands

import (
	"simplix/internal/domain"
)

// checkSender runs before parsing: the command permission first, then the
// sender type.
func checkSender(issuer domain.Issuer, def *Definition) error {
	if def.Permission != "" && !issuer.HasPermission(def.Permission) {
		return NoPermission(def.Permission)
	}
	if def.RequireActor {
		if _, ok := domain.AsActor(issuer); !ok {
			return InvalidSender("%s can only be used by a player", def.Name)
		}
	}
	return nil
}

// checkFlags runs after parsing and only looks at flags that were given.
func checkFlags(issuer domain.Issuer, def *Definition, given map[string]any) error {
	for _, f := range def.Flags {
		if f.Permission == "" {
			continue
		}
		if _, used := given[f.Name]; !used {
			continue
		}
		if !issuer.HasPermission(f.Permission) {
			return NoPermission(f.Permission)
		}
	}
	return nil
}
