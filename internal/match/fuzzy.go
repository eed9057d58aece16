package match

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// JaroWinklerScorer is the default fuzzy backend. It compares the full
// strings and the best-aligned token pair, taking whichever is higher, which
// approximates a partial-ratio match for short transcripts against long
// lyric corpora.
type JaroWinklerScorer struct{}

func (JaroWinklerScorer) Score(transcript, corpus string) float64 {
	transcript = strings.ToLower(strings.TrimSpace(transcript))
	corpus = strings.ToLower(strings.TrimSpace(corpus))
	if transcript == "" || corpus == "" {
		return 0
	}
	score := matchr.JaroWinkler(transcript, corpus, false)

	// A sung excerpt usually covers a small slice of the corpus; slide a
	// transcript-sized window over the corpus tokens and keep the best.
	transcriptTokens := strings.Fields(transcript)
	corpusTokens := strings.Fields(corpus)
	windowLen := len(transcriptTokens)
	if windowLen > 0 && len(corpusTokens) > windowLen {
		for start := 0; start+windowLen <= len(corpusTokens); start++ {
			window := strings.Join(corpusTokens[start:start+windowLen], " ")
			if s := matchr.JaroWinkler(transcript, window, false); s > score {
				score = s
			}
		}
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
