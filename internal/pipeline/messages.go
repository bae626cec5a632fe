package pipeline

import "strings"

// friendlyMessage maps known failure causes to messages fit for end users.
// Matching is by substring on the full error chain, so wrapped errors from
// any layer are caught without importing every package's sentinels here.
func friendlyMessage(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "invalid story request"):
		return "We couldn't start your story: " + msg
	case strings.Contains(lower, "malformed story response"):
		return "Our storyteller got confused and wrote something we couldn't use. Please try again."
	case strings.Contains(lower, "text model unavailable"):
		return "Our storyteller is unavailable right now. Please try again in a moment."
	case strings.Contains(lower, "image model unavailable"):
		return "Our illustrator is unavailable right now. Please try again in a moment."
	case strings.Contains(lower, "storage unavailable"):
		return "We couldn't save the illustrations. Please try again later."
	case strings.Contains(lower, "oom") || strings.Contains(lower, "out of memory"):
		return "Our story library is full right now. Please try again later."
	case strings.Contains(lower, "story store unavailable") || strings.Contains(lower, "connection refused"):
		return "We couldn't reach the story library. Please try again later."
	default:
		return "Something went wrong while creating your story. Please try again."
	}
}
