package decision

import (
	"math"
	"strings"
	"unicode"

	"github.com/opd-ai/sonicloop/state"
)

type phraseGroup []string

var (
	fasterWords  = phraseGroup{"faster", "speed up", "quicker"}
	slowerWords  = phraseGroup{"slower", "slow down"}
	intenseWords = phraseGroup{"intense", "energetic", "heavy", "louder"}
	calmWords    = phraseGroup{"calm", "ambient", "chill", "relax", "soft"}
	brighterWord = phraseGroup{"brighter"}
	darkerWord   = phraseGroup{"darker"}
	complexWords = phraseGroup{"complex", "experimental"}
	simpleWords  = phraseGroup{"simple", "minimal"}
	moreEcho     = phraseGroup{"more echo"}
	lessEcho     = phraseGroup{"less echo"}
)

const (
	tempoStep      = 10.0
	cutoffNudge    = 20.0
	echoStep       = 0.2
	reverbBoost    = 0.2
	intenseTarget  = 8.0
	calmTarget     = 3.0
	highEnergy     = 0.9
	lowEnergy      = 0.2
	highComplexity = 0.8
	lowComplexity  = 0.2
)

// InterpretDirective maps free text to immediate decisions by keyword. Words
// match whole-word and case-insensitively. Relative changes are computed from
// s and clamped to each parameter's range. Text with no known keyword yields
// no decisions.
func (e *Engine) InterpretDirective(text string, s state.MusicalState) []Decision {
	words := tokenize(text)
	ts := e.now()
	var out []Decision

	add := func(p state.Parameter, v float64, conf float64, reason string) {
		out = append(out, Decision{
			Parameter:  p,
			Value:      state.Number(p.Clamp(v)),
			Reason:     reason,
			Confidence: conf,
			Timestamp:  ts,
		})
	}

	switch {
	case fasterWords.matches(words):
		add(state.ParamBPM, s.BPM+tempoStep, 0.9, "directive: faster")
	case slowerWords.matches(words):
		add(state.ParamBPM, s.BPM-tempoStep, 0.9, "directive: slower")
	}

	switch {
	case intenseWords.matches(words):
		add(state.ParamIntensity, intenseTarget, 0.85, "directive: more intense")
		add(state.ParamEnergyLevel, highEnergy, 0.8, "directive: more intense")
	case calmWords.matches(words):
		add(state.ParamIntensity, calmTarget, 0.85, "directive: calmer")
		add(state.ParamReverb, math.Min(s.Reverb+reverbBoost, 1), 0.8, "directive: calmer, more space")
		add(state.ParamEnergyLevel, lowEnergy, 0.8, "directive: calmer")
	}

	switch {
	case brighterWord.matches(words):
		add(state.ParamCutoff, s.Cutoff+cutoffNudge, 0.8, "directive: brighter")
	case darkerWord.matches(words):
		add(state.ParamCutoff, s.Cutoff-cutoffNudge, 0.8, "directive: darker")
	}

	switch {
	case complexWords.matches(words):
		add(state.ParamComplexity, highComplexity, 0.8, "directive: more complex")
	case simpleWords.matches(words):
		add(state.ParamComplexity, lowComplexity, 0.8, "directive: simpler")
	}

	switch {
	case moreEcho.matches(words):
		add(state.ParamEcho, s.Echo+echoStep, 0.8, "directive: more echo")
	case lessEcho.matches(words):
		add(state.ParamEcho, s.Echo-echoStep, 0.8, "directive: less echo")
	}

	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matches reports whether any phrase in g occurs as a run of whole words.
func (g phraseGroup) matches(words []string) bool {
	for _, phrase := range g {
		parts := strings.Fields(phrase)
		for i := 0; i+len(parts) <= len(words); i++ {
			hit := true
			for j, p := range parts {
				if words[i+j] != p {
					hit = false
					break
				}
			}
			if hit {
				return true
			}
		}
	}
	return false
}
