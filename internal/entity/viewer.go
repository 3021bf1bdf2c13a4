package entity

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Viewer é quem está olhando o CRM. É passado explicitamente em cada chamada.
type Viewer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// CanSee aplica o escopo: corretor só enxerga leads atribuídos a ele.
func (v Viewer) CanSee(l Lead) bool {
	if v.IsAdmin() {
		return true
	}
	return l.AssignedAgentID != nil && *l.AssignedAgentID == v.ID
}

// LeadFilter devolve o filtro remoto correspondente ao escopo do viewer.
func (v Viewer) LeadFilter() LeadFilter {
	if v.IsAdmin() {
		return LeadFilter{}
	}
	return LeadFilter{AssignedAgentID: v.ID}
}

func (v Viewer) Validate() error {
	if v.ID == "" {
		return &ValidationError{Field: "viewer", Message: "id is required"}
	}
	if v.Role != RoleAdmin && v.Role != RoleAgent {
		return &ValidationError{Field: "viewer", Message: "unknown role " + string(v.Role)}
	}
	return nil
}
