package roadmap

// Config bounds the context window assembled into each prompt. ContextLength
// caps how many context entries are considered; MessageLimitChars caps the
// byte length of the prompt body. Both are fixed for the process lifetime.
// A ContextLength of zero disables context entirely.
type Config struct {
	ContextLength     int
	MessageLimitChars int
}

// DefaultConfig returns the stock window bounds.
func DefaultConfig() Config {
	return Config{
		ContextLength:     3,
		MessageLimitChars: 2048,
	}
}
