package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Action(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{"Show me Orion", ActionShow},
		{"display the big dipper", ActionShow},
		{"Where is Betelgeuse?", ActionFind},
		{"locate Cassiopeia", ActionFind},
		{"Tell me about Lyra", ActionInfo},
		{"What's the brightest star in Leo?", ActionInfo},
		{"visible tonight", ActionFilter},
		{"compare Vega and Deneb", ActionCompare},
		{"orion", ActionUnknown},
		{"", ActionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Action)
		})
	}
}

func TestParse_Entities(t *testing.T) {
	in := Parse("Find the Big Dipper")
	assert.Equal(t, []string{"Ursa Major"}, in.Entities)
	assert.Equal(t, TargetConstellation, in.Target)
	assert.Equal(t, "Find the Big Dipper", in.Original)

	in = Parse("tell me about Vega")
	assert.Equal(t, []string{"Vega"}, in.Entities)
	assert.Equal(t, TargetStar, in.Target)

	in = Parse("show Boötes")
	assert.Equal(t, []string{"Boötes"}, in.Entities)

	in = Parse("the hero")
	assert.Equal(t, []string{"Perseus", "Hercules"}, in.Entities)
}

func TestParse_WholeWordsOnly(t *testing.T) {
	// "ram" inside "program" and "leo" inside "leonids" are not aliases.
	in := Parse("show the program for the leonids")
	assert.Empty(t, in.Entities)

	in = Parse("Orion, Leo!")
	assert.Equal(t, []string{"Orion", "Leo"}, in.Entities)
}

func TestParse_Filters(t *testing.T) {
	in := Parse("What constellations are visible in December?")
	assert.Equal(t, "december", in.Filters.Month)
	assert.Equal(t, TargetConstellation, in.Target)

	in = Parse("brightest star in Orion")
	assert.Equal(t, "brightest", in.Filters.Brightness)
	assert.Equal(t, TargetStar, in.Target)

	in = Parse("dimmest stars")
	assert.Equal(t, "dimmest", in.Filters.Brightness)

	in = Parse("what can I see in autumn")
	assert.Equal(t, "autumn", in.Filters.TimeOfYear)
	assert.Equal(t, TargetConstellation, in.Target)
}

func TestRespond_Month(t *testing.T) {
	r := Ask("What constellations are visible in December?")
	assert.Equal(t, RespondShowInfo, r.Action)
	assert.Equal(t, []string{"Taurus", "Orion", "Aries", "Perseus", "Andromeda", "Eridanus"}, r.Constellations)
	assert.Contains(t, r.Text, "Constellations visible in December: Taurus, Orion")
}

func TestRespond_Season(t *testing.T) {
	r := Ask("what's up in summer")
	require.Equal(t, RespondShowInfo, r.Action)
	assert.Equal(t, VisibleIn("july"), r.Constellations)
	assert.Contains(t, r.Text, "visible in Summer")
}

func TestRespond_SelectConstellation(t *testing.T) {
	r := Ask("Show me Orion")
	assert.Equal(t, RespondSelectConstellation, r.Action)
	assert.Equal(t, "Orion", r.Constellation)
	assert.Equal(t, "Showing Orion constellation.", r.Text)

	r = Ask("Find the Big Dipper")
	assert.Equal(t, "Ursa Major", r.Constellation)

	r = Ask("tell me about the swan")
	assert.Equal(t, RespondSelectConstellation, r.Action)
	assert.Equal(t, "Cygnus", r.Constellation)
	assert.Contains(t, r.Text, "Cygnus is a constellation.")
}

func TestRespond_Star(t *testing.T) {
	r := Ask("Tell me about Vega")
	assert.Equal(t, RespondSelectConstellation, r.Action)
	assert.Equal(t, "Lyra", r.Constellation)
	assert.Equal(t, "Vega", r.Star)
	assert.Contains(t, r.Text, "Vega is in the Lyra constellation. Magnitude: 0.03.")

	r = Ask("where is betelgeuse")
	assert.Equal(t, "Orion", r.Constellation)
	assert.Contains(t, r.Text, "Magnitude: 0.5.")

	r = Ask("sirius")
	assert.Equal(t, RespondHighlightStar, r.Action)
	assert.Equal(t, "Sirius", r.Star)
	assert.Equal(t, "Canis Major", r.Constellation)
}

func TestRespond_BrightestIn(t *testing.T) {
	r := Ask("What's the brightest star in Leo?")
	assert.Equal(t, RespondSelectConstellation, r.Action)
	assert.Equal(t, "Leo", r.Constellation)
	assert.Equal(t, "Regulus", r.Star)
	assert.Equal(t, "The brightest star in Leo is Regulus with a magnitude of 1.35.", r.Text)

	r = Ask("brightest star in Orion")
	assert.Equal(t, "Rigel", r.Star)
}

func TestRespond_DeepSky(t *testing.T) {
	r := Ask("show me a galaxy")
	assert.Equal(t, RespondShowInfo, r.Action)
	assert.Contains(t, r.Text, "Andromeda Galaxy (M31)")
	assert.Contains(t, r.Text, "Pleiades")
}

func TestRespond_Help(t *testing.T) {
	for _, text := range []string{"", "hello", "show me something"} {
		r := Ask(text)
		assert.Equal(t, RespondShowInfo, r.Action, text)
		assert.Equal(t, HelpText, r.Text, text)
	}
}

func TestLookups(t *testing.T) {
	s, ok := LookupStar("POLARIS")
	require.True(t, ok)
	assert.Equal(t, "Ursa Minor", s.Constellation)

	_, ok = LookupStar("Proxima")
	assert.False(t, ok)

	assert.Len(t, VisibleIn("March"), 6)
	assert.Nil(t, VisibleIn("smarch"))
}
