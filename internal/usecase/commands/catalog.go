package commands

type FlagDTO struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description,omitempty"`
	Value       string   `json:"value,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Permission  string   `json:"permission,omitempty"`
}

type CommandDTO struct {
	Name          string    `json:"name"`
	Aliases       []string  `json:"aliases,omitempty"`
	Description   string    `json:"description,omitempty"`
	Usage         string    `json:"usage"`
	Permission    string    `json:"permission,omitempty"`
	RequiresActor bool      `json:"requires_actor,omitempty"`
	Flags         []FlagDTO `json:"flags,omitempty"`
}

func (s *Service) Catalog() []CommandDTO {
	defs := s.registry.Definitions()
	out := make([]CommandDTO, 0, len(defs))
	for _, def := range defs {
		out = append(out, commandDTOFromDefinition(def))
	}
	return out
}

func commandDTOFromDefinition(def *Definition) CommandDTO {
	flags := make([]FlagDTO, 0, len(def.Flags))
	for _, f := range def.Flags {
		dto := FlagDTO{
			Name:        f.Name,
			Aliases:     append([]string(nil), f.Aliases...),
			Description: f.Description,
			Required:    f.Required,
			Permission:  f.Permission,
		}
		if f.Value != nil {
			dto.Value = f.Value.Type.String()
		}
		flags = append(flags, dto)
	}
	return CommandDTO{
		Name:          def.Name,
		Aliases:       append([]string(nil), def.Aliases...),
		Description:   def.Description,
		Usage:         "/" + def.Usage(),
		Permission:    def.Permission,
		RequiresActor: def.RequireActor,
		Flags:         flags,
	}
}
