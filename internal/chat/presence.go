package chat

// Presence derives the online roster from the registry. It keeps no state of
// its own; every snapshot is recomputed on demand, which is cheap at chat-room
// scale.
type Presence struct {
	reg *Registry
}

func NewPresence(reg *Registry) *Presence {
	return &Presence{reg: reg}
}

// Roster returns the current participants in registration order, minus the
// excluded connection. Pass "" to include everyone.
func (p *Presence) Roster(excludeConnID string) []RosterEntry {
	parts := p.reg.Snapshot()
	out := make([]RosterEntry, 0, len(parts))
	for _, part := range parts {
		if part.ConnectionID == excludeConnID {
			continue
		}
		out = append(out, RosterEntry{
			ID:       part.ConnectionID,
			UserID:   part.UserID,
			Username: part.Username,
			Email:    part.Email,
			Avatar:   part.Avatar,
		})
	}
	return out
}

// Publish pushes a user_list event to every connection. Each recipient gets
// the roster minus itself, so clients never see their own entry. Called after
// every registry mutation.
func (p *Presence) Publish() {
	for _, part := range p.reg.Snapshot() {
		p.reg.Send(part.ConnectionID, Event{
			Type:    EvUserList,
			Payload: p.Roster(part.ConnectionID),
		})
	}
}
