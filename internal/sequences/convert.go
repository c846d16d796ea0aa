package sequences

import "github.com/opencode-ai/director/internal/models"

// ToActions converts the sequence into unsaved store records, in order.
func (s *Sequence) ToActions() []*models.Action {
	actions := make([]*models.Action, 0, len(s.Actions))
	for _, a := range s.Actions {
		actions = append(actions, &models.Action{
			Name:       a.Name,
			Type:       a.Type,
			Parameters: a.Parameters,
		})
	}
	return actions
}

// FromActions builds a sequence from stored actions, keeping their order.
func FromActions(name, description string, actions []*models.Action) *Sequence {
	seq := &Sequence{
		Name:        name,
		Description: description,
		Actions:     make([]SequenceAction, 0, len(actions)),
	}
	for _, a := range actions {
		seq.Actions = append(seq.Actions, SequenceAction{
			Name:       a.Name,
			Type:       a.Type,
			Parameters: a.Parameters,
		})
	}
	return seq
}
