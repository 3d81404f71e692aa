package telegram

import "strings"

// broadcastMarkers address the whole team at once.
var broadcastMarkers = []string{"@everyone", "@here"}

// isBroadcast reports whether the text addresses the whole team.
func isBroadcast(text string) bool {
	for _, marker := range broadcastMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// detectMentions returns the agent names explicitly mentioned as @<name>.
func detectMentions(text string, agentNames []string) []string {
	var mentioned []string
	for _, name := range agentNames {
		if strings.Contains(text, "@"+name) {
			mentioned = append(mentioned, name)
		}
	}
	return mentioned
}
