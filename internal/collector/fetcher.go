package collector

// FeedEntry is one raw item pulled from an RSS/Atom feed, before
// normalization. Published is kept as the source-reported string since
// feeds disagree wildly about timestamp formats.
type FeedEntry struct {
	Title      string
	Link       string
	Summary    string // raw, may contain markup
	Content    string
	Published  string
	Author     string
	Categories []string
	FeedTitle  string
}

// RawPost is one social post as returned by the single-post lookup API.
// Absent engagement counters are zero.
type RawPost struct {
	ID        string
	Author    string
	Handle    string
	Content   string
	CreatedAt string
	URL       string
	Likes     int64
	Retweets  int64
	Views     int64
}
