package presence

import (
	"time"

	"github.com/prudhvinik1/grftalk/internal/models"
	"github.com/prudhvinik1/grftalk/internal/state"
)

const lastSeenLayout = "02/01/2006 at 15:04"

// Header is the conversation header view model.
type Header struct {
	Empty    bool
	Name     string
	Avatar   string
	Initials string
	Online   bool
	Subtitle string
}

// HeaderFor renders the header of the selected conversation. A selection
// that is not in the current sequence renders as the empty header.
func (e Evaluator) HeaderFor(st state.ChatState) Header {
	c, ok := st.Selected()
	if !ok {
		return Header{Empty: true}
	}

	now := e.Now()
	h := Header{
		Name:     c.User.Name,
		Avatar:   c.User.Avatar,
		Initials: Initials(c.User.Name),
		Online:   IsOnlineWithin(c.User.LastAccess, now, e.Window),
	}
	h.Subtitle = Label(c.User, now, e.Window, now.Location())
	return h
}

// Label is "Online", or the last-seen time rendered in loc.
func Label(p models.Participant, now time.Time, window time.Duration, loc *time.Location) string {
	if IsOnlineWithin(p.LastAccess, now, window) {
		return "Online"
	}
	if p.LastAccess.IsZero() {
		return "Offline"
	}
	if loc == nil {
		loc = time.Local
	}
	return "Last seen " + p.LastAccess.In(loc).Format(lastSeenLayout)
}

// Initials returns the first two runes of name.
func Initials(name string) string {
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}
