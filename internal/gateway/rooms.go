package gateway

import "sync"

// ChatRoom returns the broadcast room name for a conversation.
func ChatRoom(chatID string) string {
	return "chat_" + chatID
}

// PersonalRoom returns the broadcast room name for a user's personal channel,
// used for notifications and call signaling without an explicit join.
func PersonalRoom(userID string) string {
	return userID
}

// Rooms manages named broadcast groups. A connection may belong to many chat
// rooms at once plus its own personal room; no capacity limit is enforced.
// All operations are thread-safe via sync.RWMutex.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Client]struct{}
}

// NewRooms creates an empty room table.
func NewRooms() *Rooms {
	return &Rooms{members: make(map[string]map[*Client]struct{})}
}

// Join adds the client to a room. Joining a room the client is already in has
// no effect.
func (r *Rooms) Join(client *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[room] == nil {
		r.members[room] = make(map[*Client]struct{})
	}
	r.members[room][client] = struct{}{}
}

// Leave removes the client from a room. Leaving a room the client is not in
// has no effect.
func (r *Rooms) Leave(client *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.members[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(r.members, room)
		}
	}
}

// LeaveAll removes the client from every room it belongs to. Called once when
// the connection closes.
func (r *Rooms) LeaveAll(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.members {
		delete(members, client)
		if len(members) == 0 {
			delete(r.members, room)
		}
	}
}

// Members returns a snapshot of the room's current membership.
func (r *Rooms) Members(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.members[room]
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// MemberCount returns the number of connections in a room.
func (r *Rooms) MemberCount(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[room])
}
