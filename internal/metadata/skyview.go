package metadata

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strconv"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/version"
)

const (
	// SkyViewURL is the NASA SkyView image endpoint.
	SkyViewURL = "https://skyview.gsfc.nasa.gov/cgi-bin/images"

	// SkyViewSource is the attribution shown with images.
	SkyViewSource = "NASA SkyView Virtual Observatory"

	// DefaultSurvey is the optical Digitized Sky Survey.
	DefaultSurvey = "DSS"

	defaultFieldOfView = 1.0
	starFieldOfView    = 0.25
)

// Survey describes one SkyView image survey.
type Survey struct {
	Code        string
	Name        string
	Description string
	Wavelength  string
}

// Label is the display form, e.g. "Digitized Sky Survey (Optical (visible light))".
func (s Survey) Label() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Wavelength)
}

var surveys = []Survey{
	{
		Code:        "DSS",
		Name:        "Digitized Sky Survey",
		Description: "Optical survey covering the entire sky",
		Wavelength:  "Optical (visible light)",
	},
	{
		Code:        "WISE 3.4",
		Name:        "WISE Infrared",
		Description: "Wide-field Infrared Survey",
		Wavelength:  "Mid-Infrared (3.4 μm)",
	},
}

// Surveys returns the available surveys, DSS first.
func Surveys() []Survey {
	out := make([]Survey, len(surveys))
	copy(out, surveys)
	return out
}

// NextSurvey cycles through Surveys.
func NextSurvey(code string) string {
	for i, s := range surveys {
		if s.Code == code {
			return surveys[(i+1)%len(surveys)].Code
		}
	}
	return DefaultSurvey
}

// Larger constellations get a wider field so the image frames more of them.
var fieldOfView = map[string]float64{
	"Hydra":       3.0,
	"Virgo":       2.5,
	"Ursa Major":  2.5,
	"Cetus":       2.5,
	"Hercules":    2.0,
	"Orion":       1.5,
	"Sagittarius": 1.5,
	"Leo":         1.5,
	"Ophiuchus":   2.0,
	"Aquarius":    2.0,
	"Andromeda":   1.5,
	"Crux":        0.5,
}

// FieldOfView returns the image size in degrees for a constellation.
func FieldOfView(name string) float64 {
	if fov, ok := fieldOfView[name]; ok {
		return fov
	}
	return defaultFieldOfView
}

// Image describes a SkyView cutout centred on a sky position.
type Image struct {
	URL         string
	Survey      string // Display label
	FieldOfView float64
	Position    astro.Equatorial
	Source      string
}

// ImageURL builds a SkyView request for a position in degrees. An empty base
// selects SkyViewURL.
func ImageURL(base string, pos astro.Equatorial, sizeDeg float64, survey string) string {
	if base == "" {
		base = SkyViewURL
	}
	params := url.Values{}
	params.Set("Survey", survey)
	params.Set("position", strconv.FormatFloat(pos.RAdeg, 'f', -1, 64)+","+
		strconv.FormatFloat(pos.DecDeg, 'f', -1, 64))
	params.Set("size", strconv.FormatFloat(sizeDeg, 'f', -1, 64))
	params.Set("Return", "GIF")
	params.Set("scaling", "Linear")
	params.Set("sampler", "LI")
	return base + "?" + params.Encode()
}

// ConstellationImage describes the cutout for a constellation centre.
func ConstellationImage(base, name string, center astro.Equatorial, surveyCode string) Image {
	if surveyCode == "" {
		surveyCode = DefaultSurvey
	}
	label := surveyCode
	for _, s := range surveys {
		if s.Code == surveyCode {
			label = s.Label()
			break
		}
	}
	fov := FieldOfView(name)
	return Image{
		URL:         ImageURL(base, center, fov, surveyCode),
		Survey:      label,
		FieldOfView: fov,
		Position:    center,
		Source:      SkyViewSource,
	}
}

// StarFieldImage describes a narrow DSS cutout around a star.
func StarFieldImage(base string, pos astro.Equatorial) Image {
	return Image{
		URL:         ImageURL(base, pos, starFieldOfView, DefaultSurvey),
		Survey:      surveys[0].Label(),
		FieldOfView: starFieldOfView,
		Position:    pos,
		Source:      SkyViewSource,
	}
}

// ImageFetcher downloads and decodes survey images.
type ImageFetcher struct {
	client *http.Client
}

// NewImageFetcher creates a fetcher. SkyView renders on demand and can be
// slow, so the timeout is longer than the metadata one.
func NewImageFetcher() *ImageFetcher {
	return &ImageFetcher{client: &http.Client{Timeout: 4 * RequestTimeout}}
}

// Fetch downloads the image and decodes it as GIF, PNG or JPEG.
func (f *ImageFetcher) Fetch(ctx context.Context, img Image) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	decoded, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return decoded, nil
}
