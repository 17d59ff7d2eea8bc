package gesture

import (
	"math"
	"strings"

	"github.com/signbridge/signbridge-api/internal/types"
)

// Landmark indices follow the 21-point hand model: wrist is 0, each finger
// contributes four points ending at its tip.
const (
	landmarkCount = 21

	thumbTip  = 4
	indexTip  = 8
	middleTip = 12
	ringTip   = 16
	pinkyTip  = 20
)

// closeThreshold separates "tips touching" from "tips apart" in normalized
// image coordinates.
const closeThreshold = 0.1

// frameFeatures are the pairwise tip distances the threshold table reads.
type frameFeatures struct {
	thumbIndex  float64
	thumbMiddle float64
	thumbRing   float64
	thumbPinky  float64
	indexMiddle float64
}

func distance(a, b types.Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func extractFeatures(lm []types.Landmark) frameFeatures {
	return frameFeatures{
		thumbIndex:  distance(lm[thumbTip], lm[indexTip]),
		thumbMiddle: distance(lm[thumbTip], lm[middleTip]),
		thumbRing:   distance(lm[thumbTip], lm[ringTip]),
		thumbPinky:  distance(lm[thumbTip], lm[pinkyTip]),
		indexMiddle: distance(lm[indexTip], lm[middleTip]),
	}
}

// ClassifyFrame maps one frame of hand landmarks to a letter code. It returns
// ("", false) when the frame has the wrong number of landmarks or matches no
// rule. Rules are ordered most-specific first.
func ClassifyFrame(lm []types.Landmark) (string, bool) {
	if len(lm) != landmarkCount {
		return "", false
	}
	f := extractFeatures(lm)

	switch {
	// Fist: index and middle tips curled against the thumb.
	case f.thumbIndex < closeThreshold && f.thumbMiddle < closeThreshold:
		return "A", true
	// Thumb-index circle, other fingers extended.
	case f.thumbIndex < closeThreshold && f.thumbMiddle >= 0.25 && f.thumbRing >= 0.25:
		return "F", true
	// Pinky and thumb out, middle and ring curled.
	case f.thumbMiddle < closeThreshold && f.thumbRing < closeThreshold &&
		f.thumbPinky >= 0.3:
		return "Y", true
	// Index up beside the thumb, middle curled in.
	case f.thumbMiddle < closeThreshold && f.thumbIndex >= 0.2:
		return "L", true
	// Index and middle spread, ring and pinky curled.
	case f.thumbRing < closeThreshold && f.thumbPinky < closeThreshold &&
		f.indexMiddle >= 0.12:
		return "V", true
	// Index and middle together, ring and pinky curled.
	case f.thumbRing < closeThreshold && f.thumbPinky < closeThreshold &&
		f.indexMiddle < 0.08:
		return "U", true
	// Flat open hand.
	case f.thumbIndex >= 0.25 && f.thumbMiddle >= 0.25 &&
		f.thumbRing >= 0.25 && f.thumbPinky >= 0.25:
		return "B", true
	default:
		return "", false
	}
}

// phraseTable maps accumulated letter-code sequences to phrases. Keys are the
// codes joined without a separator.
var phraseTable = map[string]string{
	"A":   "Hello",
	"B":   "Stop",
	"L":   "I love you",
	"V":   "Peace",
	"Y":   "Yes",
	"U":   "You",
	"F":   "Fine",
	"AB":  "Help me",
	"AV":  "Hello everyone",
	"BA":  "Please wait",
	"LV":  "Thank you",
	"UV":  "See you",
	"AAB": "I need a break",
}

const unknownGesture = "Unknown gesture"

// TranslateSequence maps a run of detected letter codes to a phrase. An empty
// sequence yields "Unknown gesture"; a sequence with no table entry falls back
// to the joined codes so the user still sees what was spelled.
func TranslateSequence(codes []string) string {
	if len(codes) == 0 {
		return unknownGesture
	}
	if phrase, ok := phraseTable[strings.Join(codes, "")]; ok {
		return phrase
	}
	return strings.Join(codes, " ")
}
