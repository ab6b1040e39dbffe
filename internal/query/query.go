// Package query answers short natural-language questions about the sky
// with local lookup tables. No network service is involved.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Action is what the user asked to do.
type Action string

const (
	ActionShow    Action = "show"
	ActionFind    Action = "find"
	ActionInfo    Action = "info"
	ActionFilter  Action = "filter"
	ActionCompare Action = "compare"
	ActionUnknown Action = "unknown"
)

// Target is the kind of object asked about.
type Target string

const (
	TargetConstellation Target = "constellation"
	TargetStar          Target = "star"
	TargetGalaxy        Target = "galaxy"
	TargetPlanet        Target = "planet"
	TargetDSO           Target = "dso"
	TargetGeneral       Target = "general"
)

// Filters narrow a query.
type Filters struct {
	Month      string // Lowercase month name
	Brightness string // "brightest" or "dimmest"
	TimeOfYear string // Season word as typed
}

// Intent is a parsed query.
type Intent struct {
	Action   Action
	Target   Target
	Entities []string // Canonical constellation names first, then star names
	Filters  Filters
	Original string
}

// ResponseAction tells the front end what to do with a response.
type ResponseAction string

const (
	RespondSelectConstellation ResponseAction = "selectConstellation"
	RespondHighlightStar       ResponseAction = "highlightStar"
	RespondShowInfo            ResponseAction = "showInfo"
)

// Response is the answer to an intent.
type Response struct {
	Text           string
	Action         ResponseAction
	Constellation  string   // Set for RespondSelectConstellation
	Star           string   // Star to mention or highlight, may be empty
	Constellations []string // Month listings
}

var (
	showRe      = regexp.MustCompile(`\b(show|display|see|view|look at)\b`)
	findRe      = regexp.MustCompile(`\b(find|locate|where|search)\b`)
	infoRe      = regexp.MustCompile(`\b(what|tell me|info|information|about|describe)\b`)
	filterRe    = regexp.MustCompile(`\b(visible|observe)\b`)
	compareRe   = regexp.MustCompile(`\b(brightest|dimmest|largest|smallest|compare)\b`)
	seasonRe    = regexp.MustCompile(`\b(winter|summer|spring|fall|autumn)\b`)
	brightestRe = regexp.MustCompile(`\bbrightest\b`)
	dimmestRe   = regexp.MustCompile(`\bdimmest\b`)
)

// targetRules are tried in order; the first match sets the target.
var targetRules = []struct {
	re     *regexp.Regexp
	target Target
}{
	{regexp.MustCompile(`\bconstellations?\b`), TargetConstellation},
	{regexp.MustCompile(`\bstars?\b`), TargetStar},
	{regexp.MustCompile(`\bgalax(y|ies)\b`), TargetGalaxy},
	{regexp.MustCompile(`\bplanets?\b`), TargetPlanet},
	{regexp.MustCompile(`\b(nebula|cluster|object)\b`), TargetDSO},
}

var phraseCache = map[string]*regexp.Regexp{}

func init() {
	for _, a := range constellationAliases {
		for _, p := range a.Phrases {
			phraseCache[p] = phrase(p)
		}
	}
	for _, s := range famousStars {
		key := strings.ToLower(s.Name)
		phraseCache[key] = phrase(key)
	}
	for _, m := range months {
		phraseCache[m] = phrase(m)
	}
}

// phrase matches p as whole words. Word boundaries in RE2 are ASCII, so a
// non-ASCII edge is matched against whitespace or the string ends instead.
func phrase(p string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(p) + `([^\p{L}\p{N}]|$)`)
}

func contains(text, p string) bool {
	re, ok := phraseCache[p]
	if !ok {
		re = phrase(p)
	}
	return re.MatchString(text)
}

// Parse classifies a free-text query. It never fails; unrecognised input
// yields ActionUnknown and TargetGeneral.
func Parse(text string) Intent {
	q := strings.ToLower(strings.TrimSpace(text))
	in := Intent{
		Action:   parseAction(q),
		Target:   TargetGeneral,
		Original: text,
	}

	for _, r := range targetRules {
		if r.re.MatchString(q) {
			in.Target = r.target
			break
		}
	}

	for _, a := range constellationAliases {
		for _, p := range a.Phrases {
			if contains(q, p) {
				in.Entities = append(in.Entities, a.Name)
				if in.Target == TargetGeneral {
					in.Target = TargetConstellation
				}
				break
			}
		}
	}

	for _, s := range famousStars {
		if contains(q, strings.ToLower(s.Name)) {
			in.Entities = append(in.Entities, s.Name)
			if in.Target == TargetGeneral {
				in.Target = TargetStar
			}
		}
	}

	for _, m := range months {
		if contains(q, m) {
			in.Filters.Month = m
			break
		}
	}
	if season := seasonRe.FindString(q); season != "" {
		in.Filters.TimeOfYear = season
	}
	if in.Filters.Month != "" || in.Filters.TimeOfYear != "" {
		if in.Target == TargetGeneral {
			in.Target = TargetConstellation
		}
	}

	switch {
	case brightestRe.MatchString(q):
		in.Filters.Brightness = "brightest"
	case dimmestRe.MatchString(q):
		in.Filters.Brightness = "dimmest"
	}

	return in
}

func parseAction(q string) Action {
	switch {
	case showRe.MatchString(q):
		return ActionShow
	case findRe.MatchString(q):
		return ActionFind
	case infoRe.MatchString(q):
		return ActionInfo
	case filterRe.MatchString(q):
		return ActionFilter
	case compareRe.MatchString(q):
		return ActionCompare
	default:
		return ActionUnknown
	}
}

// HelpText lists example queries.
const HelpText = `I can help you explore the night sky! Try asking:
- "Show me Orion"
- "What constellations are visible in December?"
- "What's the brightest star in Leo?"
- "Find the Big Dipper"`

// Respond turns an intent into an answer. The first matching rule wins:
// month listings, constellation selection, star lookup, brightest star in
// a constellation, deep-sky objects, then help text.
func Respond(in Intent) Response {
	month := in.Filters.Month
	if month == "" {
		month = seasonMonths[in.Filters.TimeOfYear]
	}
	if month != "" && in.Target == TargetConstellation {
		if visible := VisibleIn(month); len(visible) > 0 {
			label := titleCase(month)
			if in.Filters.Month == "" {
				label = titleCase(in.Filters.TimeOfYear)
			}
			return Response{
				Text: fmt.Sprintf("Constellations visible in %s: %s. Click on any constellation to explore it!",
					label, strings.Join(visible, ", ")),
				Action:         RespondShowInfo,
				Constellations: visible,
			}
		}
	}

	if len(in.Entities) > 0 && in.Target == TargetConstellation {
		name := in.Entities[0]
		switch in.Action {
		case ActionShow, ActionFind:
			return Response{
				Text:          fmt.Sprintf("Showing %s constellation.", name),
				Action:        RespondSelectConstellation,
				Constellation: name,
			}
		case ActionInfo:
			return Response{
				Text: fmt.Sprintf("%s is a constellation. Click on it to see detailed information "+
					"including its area, brightest stars, and Wikipedia description.", name),
				Action:        RespondSelectConstellation,
				Constellation: name,
			}
		}
	}

	if len(in.Entities) > 0 && in.Target == TargetStar {
		if s, ok := LookupStar(in.Entities[0]); ok {
			switch in.Action {
			case ActionInfo, ActionFind, ActionShow:
				return Response{
					Text: fmt.Sprintf("%s is in the %s constellation. Magnitude: %s. "+
						"It's one of the brightest stars in the night sky!",
						s.Name, s.Constellation, formatMag(s.Magnitude)),
					Action:        RespondSelectConstellation,
					Constellation: s.Constellation,
					Star:          s.Name,
				}
			case ActionUnknown:
				return Response{
					Text:          fmt.Sprintf("%s (magnitude %s) in %s.", s.Name, formatMag(s.Magnitude), s.Constellation),
					Action:        RespondHighlightStar,
					Constellation: s.Constellation,
					Star:          s.Name,
				}
			}
		}
	}

	if in.Filters.Brightness == "brightest" && len(in.Entities) > 0 {
		name := in.Entities[0]
		if s, ok := brightestIn(name); ok {
			return Response{
				Text: fmt.Sprintf("The brightest star in %s is %s with a magnitude of %s.",
					name, s.Name, formatMag(s.Magnitude)),
				Action:        RespondSelectConstellation,
				Constellation: name,
				Star:          s.Name,
			}
		}
	}

	if in.Target == TargetGalaxy || in.Target == TargetDSO {
		return Response{
			Text:   "Deep sky objects include: " + strings.Join(deepSkyObjects, " ") + " Use the search to find specific objects!",
			Action: RespondShowInfo,
		}
	}

	return Response{Text: HelpText, Action: RespondShowInfo}
}

// Ask parses and answers in one step.
func Ask(text string) Response {
	return Respond(Parse(text))
}

func brightestIn(constellation string) (FamousStar, bool) {
	var best FamousStar
	found := false
	for _, s := range famousStars {
		if s.Constellation != constellation {
			continue
		}
		if !found || s.Magnitude < best.Magnitude {
			best = s
			found = true
		}
	}
	return best, found
}

func formatMag(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
