// Package media derives the image and video URLs shown for a gemstone record.
//
// Media is located by naming convention only. An image-like spreadsheet column
// wins when it holds a value; otherwise the reference code names the file. The
// video shares the image's base name with an .mp4 extension. Nothing here
// checks that the files exist.
package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/idrisgemas/gemlookup/internal/sheet"
)

const (
	// DefaultBase is the path media files are served under.
	DefaultBase = "/media"

	DefaultImageExt = "jpg"
	VideoExt        = "mp4"
)

// imageTokens mark a header as holding image links.
var imageTokens = []string{"img", "photo", "image"}

// imageSuffix matches a recognized image extension at the end of a URL,
// optionally followed by a query string.
var imageSuffix = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif)(\?.*)?$`)

// Media holds the resolved URLs for one record.
type Media struct {
	ImageURL string `json:"imageUrl"`
	VideoURL string `json:"videoUrl"`

	// ImageSource names the column the image came from. Empty when the
	// reference code fallback was used.
	ImageSource string `json:"imageSource,omitempty"`
}

// Signer turns a media file name into a directly fetchable URL, typically a
// presigned object storage link.
type Signer interface {
	Sign(ctx context.Context, name string) (string, error)
}

// Resolver computes Media for records. The zero value is not usable; call
// NewResolver.
type Resolver struct {
	Base   string
	Signer Signer

	now func() time.Time
}

// NewResolver returns a Resolver serving files under base. An empty base
// means DefaultBase. signer may be nil, in which case relative file names are
// joined onto base.
func NewResolver(base string, signer Signer) *Resolver {
	if strings.TrimSpace(base) == "" {
		base = DefaultBase
	}
	return &Resolver{
		Base:   base,
		Signer: signer,
		now:    time.Now,
	}
}

// Resolve computes the image and video URLs for rec. reference is the code
// the user searched with and names the file when no image column is filled.
func (r *Resolver) Resolve(ctx context.Context, rec sheet.Record, reference string) (Media, error) {
	column, link := ImageColumn(rec)

	var m Media
	var name string
	switch {
	case link != "" && isRemote(link):
		m.ImageSource = column
		m.ImageURL = withCacheBuster(link, r.now())
		m.VideoURL = VideoURL(link)
		return m, nil
	case link != "":
		m.ImageSource = column
		name = ImageFileName(link)
	default:
		name = strings.TrimSpace(reference) + "." + DefaultImageExt
	}

	if r.Signer != nil {
		return r.sign(ctx, m, name)
	}

	image := joinBase(r.Base, name)
	m.ImageURL = withCacheBuster(image, r.now())
	m.VideoURL = VideoURL(image)

	log.Debug().
		Str("reference", reference).
		Str("column", column).
		Str("image", image).
		Msg("Media resolved")
	return m, nil
}

func (r *Resolver) sign(ctx context.Context, m Media, name string) (Media, error) {
	image, err := r.Signer.Sign(ctx, name)
	if err != nil {
		return Media{}, fmt.Errorf("failed to sign image %s: %w", name, err)
	}
	video, err := r.Signer.Sign(ctx, VideoURL(name))
	if err != nil {
		return Media{}, fmt.Errorf("failed to sign video for %s: %w", name, err)
	}
	m.ImageURL = image
	m.VideoURL = video
	return m, nil
}

// ImageColumn returns the first header, in header order, whose lowercase name
// contains an image token and whose value is not blank, together with the
// first comma-separated entry of that value. Both are "" when no column
// qualifies.
func ImageColumn(rec sheet.Record) (column, link string) {
	for _, h := range rec.Headers() {
		lower := strings.ToLower(h)
		matched := false
		for _, tok := range imageTokens {
			if strings.Contains(lower, tok) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		value := strings.TrimSpace(rec.Get(h))
		if value == "" {
			continue
		}
		first, _, _ := strings.Cut(value, ",")
		return h, strings.TrimSpace(first)
	}
	return "", ""
}

// ImageFileName turns a bare cell value into a file name, adding the default
// image extension when the value has none.
func ImageFileName(value string) string {
	if strings.Contains(value, ".") {
		return value
	}
	return value + "." + DefaultImageExt
}

// VideoURL derives the video URL from an image URL by swapping a recognized
// image extension, and any query string after it, for .mp4. When no image
// extension is recognized the query string is dropped and .mp4 appended.
func VideoURL(imageURL string) string {
	video := imageSuffix.ReplaceAllString(imageURL, "."+VideoExt)
	if strings.Contains(strings.ToLower(video), "."+VideoExt) {
		return video
	}
	base, _, _ := strings.Cut(imageURL, "?")
	return base + "." + VideoExt
}

func isRemote(link string) bool {
	return strings.HasPrefix(strings.ToLower(link), "http")
}

func joinBase(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

func withCacheBuster(u string, now time.Time) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
}
