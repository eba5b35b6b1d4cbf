package roadmap

import (
	_ "embed"

	"roadmap-agent/internal/domain"
)

// The two system instructions ship with the binary and are byte-identical
// across every request in a process. Their wording is an asset, but their
// output contracts are load-bearing: detection must yield a JSON
// {reason, is_roadmap} object, creation free-form text.
var (
	//go:embed prompts/detect_roadmap.txt
	detectInstruction string

	//go:embed prompts/create_roadmap_for_user.txt
	createInstruction string
)

func detectionMessage() domain.ChatMessage {
	return systemMessage(detectInstruction)
}

func creationMessage() domain.ChatMessage {
	return systemMessage(createInstruction)
}
