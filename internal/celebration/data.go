// Package celebration defines the per-profile document of wishes, memories,
// playlist entries and plans, and the normalizer that brings a partial or
// legacy document into the full shape before use.
package celebration

// Media types accepted for memories.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Wishlist priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Recent-activity lists are kept most-recent-first and bounded.
const (
	MaxFunMoments      = 12
	MaxSurpriseHistory = 8
)

type Wish struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Likes     int    `json:"likes"`
	Pinned    bool   `json:"pinned"`
	CreatedAt string `json:"createdAt"`
}

type Memory struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	Caption   string `json:"caption"`
	CreatedAt string `json:"createdAt"`
}

type Song struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	AddedBy string `json:"addedBy"`
	Votes   int    `json:"votes"`
}

type WishlistItem struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Note     string `json:"note"`
	Priority string `json:"priority"`
	Claimed  bool   `json:"claimed"`
}

type Plan struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	When  string `json:"when"`
	Done  bool   `json:"done"`
}

// Data is the celebration document stored per profile. It is replaced
// wholesale on every save; there is no per-field merge.
type Data struct {
	Wishes          []Wish         `json:"wishes"`
	Memories        []Memory       `json:"memories"`
	Playlist        []Song         `json:"playlist"`
	Wishlist        []WishlistItem `json:"wishlist"`
	Affirmations    []string       `json:"affirmations"`
	Plans           []Plan         `json:"plans"`
	FunMoments      []string       `json:"funMoments"`
	SurpriseHistory []string       `json:"surpriseHistory"`
}

// Seed returns the document a fresh profile starts with.
func Seed() Data {
	return Data{
		Wishes:   []Wish{},
		Memories: []Memory{},
		Playlist: []Song{},
		Wishlist: []WishlistItem{},
		Affirmations: []string{
			"You deserve softness, joy, and rooms that celebrate your presence.",
			"You are allowed to choose yourself this year.",
		},
		Plans: []Plan{
			{ID: "1", Title: "Morning flowers and coffee", When: "9:00 AM", Done: false},
			{ID: "2", Title: "Golden hour photos", When: "5:30 PM", Done: false},
		},
		FunMoments:      []string{},
		SurpriseHistory: []string{},
	}
}
