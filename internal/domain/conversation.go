package domain

// Message is a single persisted conversation message. Roadmap turns carry the
// generated roadmap in Answer; noted messages carry the classifier's Reason
// instead and exist only as future context.
type Message struct {
	PK             string
	SK             string
	ConversationID string
	Text           string
	Answer         string
	Reason         string
	Status         string
	TTL            int64
}

// ConversationMeta tracks per-conversation aggregates. Turns counts roadmaps
// generated so far, the quantity the per-conversation cap is enforced on.
type ConversationMeta struct {
	PK             string
	SK             string
	ConversationID string
	LastActivity   string
	Turns          int
	TTL            int64
}
