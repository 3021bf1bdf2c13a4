package entity

import (
	"fmt"
	"time"
)

// TransitionIntent é a única entrada do funil: arrastar um card, chamar a API
// ou usar o teclado produzem o mesmo (leadID, status alvo).
type TransitionIntent struct {
	LeadID    string     `json:"lead_id"`
	Target    LeadStatus `json:"status"`
	DealValue *float64   `json:"deal_value,omitempty"`
	// Reason complementa a descrição do evento status_change.
	Reason string `json:"reason,omitempty"`
}

// CanTransition valida a troca de etapa. Qualquer coluna pode ir para qualquer
// outra; a única restrição é que fechar exige o valor do negócio junto.
func CanTransition(current, target LeadStatus, dealValue *float64) error {
	if !current.Valid() {
		return &ValidationError{Field: "status", Message: "unknown current status " + string(current)}
	}
	if !target.Valid() {
		return &ValidationError{Field: "status", Message: "unknown target status " + string(target)}
	}
	if target == StatusClosed && current != StatusClosed {
		if dealValue == nil {
			return &ValidationError{Field: "deal_value", Message: "is required to close a lead"}
		}
		if *dealValue < 0 {
			return &ValidationError{Field: "deal_value", Message: "must be >= 0"}
		}
	}
	return nil
}

// ApplyTransition devolve um novo lead no status alvo. O lead de entrada não é alterado.
// Se o alvo for o status atual, devolve uma cópia idêntica e changed=false.
func ApplyTransition(lead Lead, target LeadStatus, dealValue *float64, now time.Time) (next Lead, changed bool, err error) {
	if err := CanTransition(lead.Status, target, dealValue); err != nil {
		return lead, false, err
	}

	next = lead.Clone()
	if target == lead.Status {
		return next, false, nil
	}

	next.Status = target
	next.UpdatedAt = now
	if target == StatusClosed {
		next.DealValue = cloneFloat(dealValue)
	} else {
		next.DealValue = nil
	}
	return next, true, nil
}

// TransitionDescription é o texto do evento status_change.
func TransitionDescription(from, to LeadStatus, reason string) string {
	desc := fmt.Sprintf("Status alterado de %s para %s", from.Label(), to.Label())
	if reason != "" {
		desc += " (" + reason + ")"
	}
	return desc
}
