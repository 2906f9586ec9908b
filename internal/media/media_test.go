package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idrisgemas/gemlookup/internal/sheet"
)

func record(t *testing.T, csv string) sheet.Record {
	t.Helper()
	ds := sheet.Parse(csv)
	require.Equal(t, 1, ds.Len())
	return ds.Records[0]
}

func fixedResolver(base string, signer Signer) *Resolver {
	r := NewResolver(base, signer)
	r.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return r
}

func TestResolveReferenceFallback(t *testing.T) {
	rec := record(t, "LOTE,Peso\n2976,3.2\n")

	m, err := fixedResolver("/media", nil).Resolve(context.Background(), rec, "2976")
	require.NoError(t, err)

	assert.Equal(t, "/media/2976.jpg?t=1700000000000", m.ImageURL)
	assert.Equal(t, "/media/2976.mp4", m.VideoURL)
	assert.Empty(t, m.ImageSource)
}

func TestResolveTrimsReference(t *testing.T) {
	rec := record(t, "LOTE\n2976\n")

	m, err := fixedResolver("https://cdn.example.com/media/", nil).Resolve(context.Background(), rec, "  2976 ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/2976.jpg?t=1700000000000", m.ImageURL)
	assert.Equal(t, "https://cdn.example.com/media/2976.mp4", m.VideoURL)
}

func TestResolveImageColumn(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		wantImage string
		wantVideo string
		wantCol   string
	}{
		{
			name:      "bare name gets extension",
			csv:       "Ref,Foto Image\nA1,\"gem-a1, gem-a1-side\"\n",
			wantImage: "/media/gem-a1.jpg?t=1700000000000",
			wantVideo: "/media/gem-a1.mp4",
			wantCol:   "Foto Image",
		},
		{
			name:      "name with extension kept",
			csv:       "Ref,IMG\nA1,a1.PNG\n",
			wantImage: "/media/a1.PNG?t=1700000000000",
			wantVideo: "/media/a1.mp4",
			wantCol:   "IMG",
		},
		{
			name:      "remote link used as is",
			csv:       "Ref,Photo\nA1,https://img.example.com/a1.webp?v=2\n",
			wantImage: "https://img.example.com/a1.webp?v=2&t=1700000000000",
			wantVideo: "https://img.example.com/a1.mp4",
			wantCol:   "Photo",
		},
		{
			name:      "empty image column skipped",
			csv:       "Ref,Photo,Image URL\nA1, ,a1-main.jpg\n",
			wantImage: "/media/a1-main.jpg?t=1700000000000",
			wantVideo: "/media/a1-main.mp4",
			wantCol:   "Image URL",
		},
		{
			name:      "all image columns empty",
			csv:       "Ref,Photo,Peso\nA1,,2.0\n",
			wantImage: "/media/A1.jpg?t=1700000000000",
			wantVideo: "/media/A1.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := fixedResolver("/media", nil).Resolve(context.Background(), record(t, tt.csv), "A1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantImage, m.ImageURL)
			assert.Equal(t, tt.wantVideo, m.VideoURL)
			assert.Equal(t, tt.wantCol, m.ImageSource)
		})
	}
}

func TestVideoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/media/2976.jpg", "/media/2976.mp4"},
		{"/media/2976.JPG", "/media/2976.mp4"},
		{"/media/2976.jpeg", "/media/2976.mp4"},
		{"/media/2976.png?x=1", "/media/2976.mp4"},
		{"/media/2976.gif", "/media/2976.mp4"},
		{"/media/2976.tiff", "/media/2976.tiff.mp4"},
		{"/media/2976.tiff?x=1", "/media/2976.tiff.mp4"},
		{"/media/2976", "/media/2976.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoURL(tt.in))
		})
	}
}

func TestImageFileName(t *testing.T) {
	assert.Equal(t, "a1.jpg", ImageFileName("a1"))
	assert.Equal(t, "a1.png", ImageFileName("a1.png"))
	assert.Equal(t, "v1.2", ImageFileName("v1.2"))
}

func TestNewResolverDefaultBase(t *testing.T) {
	assert.Equal(t, DefaultBase, NewResolver("", nil).Base)
	assert.Equal(t, DefaultBase, NewResolver("  ", nil).Base)
}

type fakeSigner struct {
	names []string
	err   error
}

func (f *fakeSigner) Sign(ctx context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.names = append(f.names, name)
	return "https://bucket.s3.amazonaws.com/gems/" + name + "?X-Amz-Signature=sig", nil
}

func TestResolveWithSigner(t *testing.T) {
	signer := &fakeSigner{}
	rec := record(t, "LOTE,Peso\n2976,3.2\n")

	m, err := fixedResolver("/media", signer).Resolve(context.Background(), rec, "2976")
	require.NoError(t, err)

	assert.Equal(t, []string{"2976.jpg", "2976.mp4"}, signer.names)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/gems/2976.jpg?X-Amz-Signature=sig", m.ImageURL)
	assert.Equal(t, "https://bucket.s3.amazonaws.com/gems/2976.mp4?X-Amz-Signature=sig", m.VideoURL)
}

func TestResolveRemoteLinkSkipsSigner(t *testing.T) {
	signer := &fakeSigner{}
	rec := record(t, "Ref,Photo\nA1,http://img.example.com/a1.jpg\n")

	m, err := fixedResolver("/media", signer).Resolve(context.Background(), rec, "A1")
	require.NoError(t, err)
	assert.Empty(t, signer.names)
	assert.Equal(t, "http://img.example.com/a1.mp4", m.VideoURL)
}

func TestResolveSignerError(t *testing.T) {
	signer := &fakeSigner{err: errors.New("no credentials")}
	rec := record(t, "LOTE\n2976\n")

	_, err := fixedResolver("/media", signer).Resolve(context.Background(), rec, "2976")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}
