package celebration

import (
	"html"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// stripMarkup removes HTML elements from user-supplied text without
// rewriting the text itself: the sanitizer entity-escapes its output, so
// the escaping is undone afterwards. Plain text like "I <3 you & cake"
// passes through unchanged.
func stripMarkup(s string) string {
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// Normalize fills every missing list with its default, assigns ids to
// entries that arrived without one, clamps counters at zero, coerces enum
// fields to their allowed values, strips HTML markup from user-supplied
// text and caps the bounded lists. It never fails: a partial or legacy
// document always comes out in the full shape. Normalizing an
// already-normalized document is a no-op. The input is not modified:
// every list is copied before any entry is touched.
func Normalize(d Data) Data {
	if d.Wishes == nil {
		d.Wishes = []Wish{}
	} else {
		d.Wishes = append([]Wish(nil), d.Wishes...)
	}
	for i := range d.Wishes {
		w := &d.Wishes[i]
		if w.ID == "" {
			w.ID = uuid.NewString()
		}
		if w.Likes < 0 {
			w.Likes = 0
		}
		w.Message = stripMarkup(w.Message)
		w.Sender = stripMarkup(w.Sender)
	}

	if d.Memories == nil {
		d.Memories = []Memory{}
	} else {
		d.Memories = append([]Memory(nil), d.Memories...)
	}
	for i := range d.Memories {
		m := &d.Memories[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.MediaType != MediaTypeImage && m.MediaType != MediaTypeVideo {
			m.MediaType = MediaTypeImage
		}
		m.Caption = stripMarkup(m.Caption)
	}

	if d.Playlist == nil {
		d.Playlist = []Song{}
	} else {
		d.Playlist = append([]Song(nil), d.Playlist...)
	}
	for i := range d.Playlist {
		s := &d.Playlist[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Votes < 0 {
			s.Votes = 0
		}
		s.Title = stripMarkup(s.Title)
		s.Artist = stripMarkup(s.Artist)
		s.AddedBy = stripMarkup(s.AddedBy)
	}

	if d.Wishlist == nil {
		d.Wishlist = []WishlistItem{}
	} else {
		d.Wishlist = append([]WishlistItem(nil), d.Wishlist...)
	}
	for i := range d.Wishlist {
		it := &d.Wishlist[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		switch it.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			it.Priority = PriorityMedium
		}
		it.Item = stripMarkup(it.Item)
		it.Note = stripMarkup(it.Note)
	}

	seed := Seed()
	if d.Affirmations == nil {
		d.Affirmations = seed.Affirmations
	} else {
		d.Affirmations = sanitizeAll(d.Affirmations)
	}

	if d.Plans == nil {
		d.Plans = seed.Plans
	} else {
		d.Plans = append([]Plan(nil), d.Plans...)
	}
	for i := range d.Plans {
		p := &d.Plans[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Title = stripMarkup(p.Title)
	}

	d.FunMoments = capList(sanitizeAll(d.FunMoments), MaxFunMoments)
	d.SurpriseHistory = capList(sanitizeAll(d.SurpriseHistory), MaxSurpriseHistory)

	return d
}

func sanitizeAll(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = stripMarkup(v)
	}
	return out
}

// capList keeps the head of the list; entries are stored most-recent-first.
func capList(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}
