package actor

import "sort"

// Roster indexes actors by id.
type Roster map[string]*Actor

// NewRoster builds a Roster from actors.
func NewRoster(actors ...*Actor) Roster {
	r := make(Roster, len(actors))
	for _, a := range actors {
		r[a.ID] = a
	}
	return r
}

// Get returns the actor with id, or nil.
func (r Roster) Get(id string) *Actor { return r[id] }

// IDs returns the actor ids in ascending order.
func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ally reports whether candidateID can flank alongside flankerID and, if so,
// the candidate's reach. Allies share a non-empty alliance; hazards never flank.
func (r Roster) Ally(flankerID, candidateID string) (int, bool) {
	if flankerID == candidateID {
		return 0, false
	}
	f, c := r[flankerID], r[candidateID]
	if f == nil || c == nil {
		return 0, false
	}
	if f.Alliance == "" || f.Alliance != c.Alliance || c.Type == TypeHazard {
		return 0, false
	}
	return c.MaxReach(), true
}
