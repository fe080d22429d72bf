package game

// Mood is the Jinn's displayed state.
type Mood string

const (
	MoodIdle      Mood = "idle"
	MoodThinking  Mood = "thinking"
	MoodAsking    Mood = "asking"
	MoodConfident Mood = "confident"
	MoodCorrect   Mood = "correct"
	MoodWrong     Mood = "wrong"
	MoodGlitched  Mood = "glitched"
)

var knownMoods = map[Mood]struct{}{
	MoodIdle:      {},
	MoodThinking:  {},
	MoodAsking:    {},
	MoodConfident: {},
	MoodCorrect:   {},
	MoodWrong:     {},
	MoodGlitched:  {},
}

// ParseMood returns the mood named s, or idle when s is not a known mood.
func ParseMood(s string) Mood {
	if _, ok := knownMoods[Mood(s)]; ok {
		return Mood(s)
	}
	return MoodIdle
}

// Moods lists every mood in display order.
func Moods() []Mood {
	return []Mood{MoodIdle, MoodThinking, MoodAsking, MoodConfident, MoodCorrect, MoodWrong, MoodGlitched}
}
