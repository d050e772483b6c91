package commands

import "simplix/internal/domain"

// PermissionTargetOthers gates operating on an actor other than the issuer.
const PermissionTargetOthers = "simplix.target.others"

// TargetFlag is shared by every command that can act on another actor.
var TargetFlag = &FlagSpec{
	Name:        "player",
	Aliases:     []string{"p"},
	Description: "The target player else the command sender.",
	Value:       &ArgumentSpec{Name: "player", Type: TypeActor},
	Permission:  PermissionTargetOthers,
}

// ResolveTarget returns the actor named by the target flag, falling back to
// the issuer when it is itself an actor.
func ResolveTarget(c *Context) (domain.Actor, error) {
	if actor, ok := FlagValue[domain.Actor](c, TargetFlag.Name); ok {
		return actor, nil
	}
	if actor, ok := domain.AsActor(c.Issuer); ok {
		return actor, nil
	}
	return nil, InvalidSender("the console must specify a target with --%s", TargetFlag.Name)
}
