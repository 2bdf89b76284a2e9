package artwork

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoProfileImage means the external lookup produced no usable
// artist image.
var ErrNoProfileImage = errors.New("no artist profile image")

// ProfileResolver resolves an artist name to a profile image URL.
type ProfileResolver interface {
	ProfileImageURL(ctx context.Context, artist string) (string, error)
}

// ITunesProfileResolver finds artist images through the public iTunes
// search API: the search resolves the artist's canonical page, and the
// page's og:image meta tag carries the profile image.
type ITunesProfileResolver struct {
	Client    *http.Client
	SearchURL string
}

type itunesSearchResult struct {
	Results []struct {
		ArtistLinkURL string `json:"artistLinkUrl"`
	} `json:"results"`
}

// ProfileImageURL implements ProfileResolver.
func (r *ITunesProfileResolver) ProfileImageURL(ctx context.Context, artist string) (string, error) {
	pageURL, err := r.artistPageURL(ctx, artist)
	if err != nil {
		return "", err
	}
	return r.scrapeImageURL(ctx, pageURL)
}

func (r *ITunesProfileResolver) artistPageURL(ctx context.Context, artist string) (string, error) {
	query := url.Values{
		"term":   {artist},
		"entity": {"musicArtist"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.SearchURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("artist lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artist lookup: unexpected status %d", resp.StatusCode)
	}

	var result itunesSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("artist lookup: %w", err)
	}
	if len(result.Results) == 0 || result.Results[0].ArtistLinkURL == "" {
		return "", ErrNoProfileImage
	}
	return result.Results[0].ArtistLinkURL, nil
}

// scrapeImageURL fetches the artist page and pulls the og:image meta
// content out of the parsed document.
func (r *ITunesProfileResolver) scrapeImageURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("artist page fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artist page fetch: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("artist page parse: %w", err)
	}

	imageURL := findMetaImage(doc)
	if imageURL == "" {
		return "", ErrNoProfileImage
	}
	return imageURL, nil
}

func findMetaImage(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var property, content string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "property", "name":
				property = attr.Val
			case "content":
				content = attr.Val
			}
		}
		if (property == "og:image" || property == "twitter:image") && content != "" {
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findMetaImage(c); found != "" {
			return found
		}
	}
	return ""
}

// dimensionPattern matches the WxH segment Apple image URLs encode,
// e.g. .../220x220bb.jpg.
var dimensionPattern = regexp.MustCompile(`\d+x\d+`)

// UpgradeImageURL rewrites the size variant encoded in an image URL to
// request at least the target dimensions. URLs without an encoded size
// pass through unchanged.
func UpgradeImageURL(imageURL string, size int) string {
	if !dimensionPattern.MatchString(imageURL) {
		return imageURL
	}
	return dimensionPattern.ReplaceAllString(imageURL, fmt.Sprintf("%dx%d", size, size))
}

// maxImageBytes caps how much of a remote image response is read.
const maxImageBytes = 20 << 20

// downloadImage fetches raw image bytes with a basic content check.
func downloadImage(ctx context.Context, client *http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("image download: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image download: response exceeds %d bytes", maxImageBytes)
	}
	if len(data) == 0 || strings.HasPrefix(http.DetectContentType(data), "text/") {
		return nil, ErrNoProfileImage
	}
	return data, nil
}
