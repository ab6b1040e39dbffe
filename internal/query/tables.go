package query

import "strings"

// alias maps a canonical constellation name to the phrases that mean it.
// Entities are reported in table order.
type alias struct {
	Name    string
	Phrases []string
}

var constellationAliases = []alias{
	{"Orion", []string{"orion", "hunter", "the hunter"}},
	{"Ursa Major", []string{"ursa major", "big dipper", "great bear", "big bear"}},
	{"Ursa Minor", []string{"ursa minor", "little dipper", "little bear"}},
	{"Cassiopeia", []string{"cassiopeia", "queen"}},
	{"Andromeda", []string{"andromeda", "chained maiden"}},
	{"Leo", []string{"leo", "lion"}},
	{"Scorpius", []string{"scorpius", "scorpio", "scorpion"}},
	{"Sagittarius", []string{"sagittarius", "archer"}},
	{"Aquarius", []string{"aquarius", "water bearer"}},
	{"Pisces", []string{"pisces", "fish"}},
	{"Gemini", []string{"gemini", "twins"}},
	{"Cancer", []string{"cancer", "crab"}},
	{"Taurus", []string{"taurus", "bull"}},
	{"Aries", []string{"aries", "ram"}},
	{"Virgo", []string{"virgo", "maiden"}},
	{"Libra", []string{"libra", "scales"}},
	{"Capricornus", []string{"capricornus", "capricorn", "goat"}},
	{"Cygnus", []string{"cygnus", "swan", "northern cross"}},
	{"Lyra", []string{"lyra", "lyre", "harp"}},
	{"Aquila", []string{"aquila", "eagle"}},
	{"Pegasus", []string{"pegasus", "winged horse"}},
	{"Perseus", []string{"perseus", "hero"}},
	{"Draco", []string{"draco", "dragon"}},
	{"Hercules", []string{"hercules", "hero"}},
	{"Boötes", []string{"bootes", "boötes", "herdsman"}},
	{"Canis Major", []string{"canis major", "big dog", "greater dog"}},
	{"Canis Minor", []string{"canis minor", "little dog", "lesser dog"}},
}

var months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Evening constellations per month, mid-northern latitudes.
var monthlyConstellations = map[string][]string{
	"january":   {"Orion", "Taurus", "Gemini", "Canis Major", "Auriga", "Perseus"},
	"february":  {"Orion", "Gemini", "Canis Major", "Canis Minor", "Cancer", "Leo"},
	"march":     {"Leo", "Cancer", "Hydra", "Virgo", "Ursa Major", "Boötes"},
	"april":     {"Leo", "Virgo", "Boötes", "Corvus", "Crater", "Ursa Major"},
	"may":       {"Virgo", "Boötes", "Libra", "Hercules", "Corona Borealis", "Ursa Major"},
	"june":      {"Hercules", "Scorpius", "Libra", "Ophiuchus", "Sagittarius", "Corona Borealis"},
	"july":      {"Scorpius", "Sagittarius", "Ophiuchus", "Hercules", "Lyra", "Cygnus"},
	"august":    {"Sagittarius", "Aquila", "Cygnus", "Lyra", "Scorpius", "Capricornus"},
	"september": {"Aquila", "Cygnus", "Pegasus", "Capricornus", "Aquarius", "Delphinus"},
	"october":   {"Pegasus", "Andromeda", "Pisces", "Aquarius", "Capricornus", "Cetus"},
	"november":  {"Andromeda", "Pegasus", "Pisces", "Aries", "Taurus", "Perseus"},
	"december":  {"Taurus", "Orion", "Aries", "Perseus", "Andromeda", "Eridanus"},
}

// seasonMonths picks a representative month for a season word.
var seasonMonths = map[string]string{
	"winter": "january",
	"spring": "april",
	"summer": "july",
	"fall":   "october",
	"autumn": "october",
}

// FamousStar is a bright star the query engine knows by name.
type FamousStar struct {
	Name          string
	Constellation string
	Magnitude     float64
}

// famousStars is ordered by magnitude.
var famousStars = []FamousStar{
	{"Sirius", "Canis Major", -1.46},
	{"Canopus", "Carina", -0.74},
	{"Arcturus", "Boötes", -0.05},
	{"Vega", "Lyra", 0.03},
	{"Capella", "Auriga", 0.08},
	{"Rigel", "Orion", 0.13},
	{"Procyon", "Canis Minor", 0.34},
	{"Betelgeuse", "Orion", 0.50},
	{"Altair", "Aquila", 0.77},
	{"Aldebaran", "Taurus", 0.85},
	{"Spica", "Virgo", 1.04},
	{"Antares", "Scorpius", 1.09},
	{"Pollux", "Gemini", 1.14},
	{"Fomalhaut", "Piscis Austrinus", 1.16},
	{"Deneb", "Cygnus", 1.25},
	{"Regulus", "Leo", 1.35},
	{"Castor", "Gemini", 1.58},
	{"Bellatrix", "Orion", 1.64},
	{"Polaris", "Ursa Minor", 1.98},
}

var deepSkyObjects = []string{
	"The Andromeda Galaxy (M31) is in the Andromeda constellation.",
	"The Orion Nebula (M42) is in the Orion constellation.",
	"The Pleiades star cluster (M45) is in the Taurus constellation.",
}

// LookupStar finds a famous star by name, case-insensitively.
func LookupStar(name string) (FamousStar, bool) {
	for _, s := range famousStars {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return FamousStar{}, false
}

// VisibleIn returns the constellations listed for a month name.
func VisibleIn(month string) []string {
	return monthlyConstellations[strings.ToLower(month)]
}
