package metadata

import (
	"github.com/dustin/go-humanize"
)

// Stats holds the IAU figures for a constellation.
type Stats struct {
	Area          int // Square degrees
	BrightestStar string
}

// iauStats covers the constellations with a published figure in our table.
// Names match catalog.ConstellationName.
var iauStats = map[string]Stats{
	"Ophiuchus":        {948, "Rasalhague (α Oph)"},
	"Orion":            {594, "Rigel (β Ori)"},
	"Scorpius":         {497, "Antares (α Sco)"},
	"Ursa Major":       {1280, "Alioth (ε UMa)"},
	"Andromeda":        {722, "Alpheratz (α And)"},
	"Cassiopeia":       {598, "Schedar (α Cas)"},
	"Lyra":             {286, "Vega (α Lyr)"},
	"Cygnus":           {804, "Deneb (α Cyg)"},
	"Leo":              {947, "Regulus (α Leo)"},
	"Taurus":           {797, "Aldebaran (α Tau)"},
	"Pisces":           {889, "Eta Piscium (η Psc)"},
	"Sagittarius":      {867, "Kaus Australis (ε Sgr)"},
	"Perseus":          {615, "Mirfak (α Per)"},
	"Hydra":            {1303, "Alphard (α Hya)"},
	"Cetus":            {1231, "Deneb Kaitos (β Cet)"},
	"Auriga":           {657, "Capella (α Aur)"},
	"Canis Major":      {380, "Sirius (α CMa)"},
	"Virgo":            {1294, "Spica (α Vir)"},
	"Gemini":           {514, "Pollux (β Gem)"},
	"Capricornus":      {414, "Deneb Algedi (δ Cap)"},
	"Draco":            {1083, "Eltanin (γ Dra)"},
	"Pegasus":          {1121, "Enif (ε Peg)"},
	"Cancer":           {506, "Altarf (β Cnc)"},
	"Aquila":           {652, "Altair (α Aql)"},
	"Canis Minor":      {183, "Procyon (α CMi)"},
	"Libra":            {538, "Zubenelgenubi (α Lib)"},
	"Aries":            {441, "Hamal (α Ari)"},
	"Pavo":             {378, "Peacock (α Pav)"},
	"Crux":             {68, "Acrux (α Cru)"},
	"Centaurus":        {1060, "Alpha Centauri (α Cen)"},
	"Delphinus":        {189, "Rotanev (β Del)"},
	"Vulpecula":        {268, "Anser (α Vul)"},
	"Triangulum":       {132, "Beta Trianguli (β Tri)"},
	"Tucana":           {295, "Alpha Tucanae (α Tuc)"},
	"Phoenix":          {469, "Ankaa (α Phe)"},
	"Indus":            {294, "Alpha Indi (α Ind)"},
	"Musca":            {138, "Alpha Muscae (α Mus)"},
	"Mensa":            {153, "Alpha Mensae (α Men)"},
	"Volans":           {141, "Beta Volantis (β Vol)"},
	"Norma":            {165, "Gamma2 Normae (γ2 Nor)"},
	"Octans":           {291, "Nu Octantis (ν Oct)"},
	"Apus":             {206, "Alpha Apodis (α Aps)"},
	"Chamaeleon":       {132, "Alpha Chamaeleontis (α Cha)"},
	"Circinus":         {93, "Alpha Circini (α Cir)"},
	"Caelum":           {125, "Alpha Caeli (α Cae)"},
	"Fornax":           {398, "Alpha Fornacis (α For)"},
	"Reticulum":        {114, "Alpha Reticuli (α Ret)"},
	"Pyxis":            {221, "Alpha Pyxidis (α Pyx)"},
	"Antlia":           {239, "Alpha Antliae (α Ant)"},
	"Telescopium":      {210, "Alpha Telescopii (α Tel)"},
	"Sextans":          {314, "Alpha Sextantis (α Sex)"},
	"Equuleus":         {72, "Kitalpha (α Equ)"},
	"Sagitta":          {80, "Gamma Sagittae (γ Sge)"},
	"Corona Australis": {128, "Alpha Coronae Australis (α CrA)"},
	"Corona Borealis":  {179, "Alphecca (α CrB)"},
	"Coma Berenices":   {386, "Beta Comae Berenices (β Com)"},
	"Columba":          {270, "Phact (α Col)"},
	"Lepus":            {290, "Arneb (α Lep)"},
	"Monoceros":        {482, "Beta Monocerotis (β Mon)"},
	"Lynx":             {545, "Alpha Lyncis (α Lyn)"},
	"Camelopardalis":   {757, "Beta Camelopardalis (β Cam)"},
	"Boötes":           {907, "Arcturus (α Boo)"},
	"Canes Venatici":   {465, "Cor Caroli (α CVn)"},
	"Crater":           {282, "Labrum (δ Crt)"},
	"Corvus":           {184, "Gienah (γ Crv)"},
	"Piscis Austrinus": {245, "Fomalhaut (α PsA)"},
	"Puppis":           {673, "Naos (ζ Pup)"},
	"Vela":             {500, "Suhail (λ Vel)"},
	"Carina":           {494, "Canopus (α Car)"},
	"Dorado":           {179, "Alpha Doradus (α Dor)"},
	"Grus":             {366, "Alnair (α Gru)"},
	"Horologium":       {248, "Alpha Horologii (α Hor)"},
	"Hydrus":           {243, "Beta Hydri (β Hyi)"},
	"Lacerta":          {201, "Alpha Lacertae (α Lac)"},
	"Microscopium":     {210, "Gamma Microscopii (γ Mic)"},
	"Pictor":           {247, "Alpha Pictoris (α Pic)"},
}

// LookupStats returns the IAU figures for a full constellation name.
func LookupStats(name string) (Stats, bool) {
	s, ok := iauStats[name]
	return s, ok
}

// FormatArea renders an area in square degrees, e.g. "1,280 sq. deg.".
func FormatArea(area int) string {
	return humanize.Comma(int64(area)) + " sq. deg."
}

func applyStats(rec *Record) {
	s, ok := iauStats[rec.Name]
	if !ok {
		return
	}
	rec.Area = FormatArea(s.Area)
	rec.BrightestStar = s.BrightestStar
}
