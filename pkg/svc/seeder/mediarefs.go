package seeder

import (
	"net/url"
	"regexp"
	"strings"
)

// Elementor data blobs are JSON-like but not guaranteed strictly parseable
// (builder-specific escaping, partial exports). Media references are found
// and rewritten with bounded text scanning instead of a full parser.

// idWindow bounds how far around a URL occurrence an adjacent numeric id
// field is searched, in both directions.
const idWindow = 200

// uploadURLPattern matches upload-asset URLs: scheme, host, a path containing
// an uploads segment, and a known image extension.
var uploadURLPattern = regexp.MustCompile(
	`(?i)https?://[^"'\s\\<>]+/uploads/[^"'\s\\<>]*\.(?:png|jpe?g|gif|webp|svg)`)

// idFieldPattern matches a numeric id field adjacent to a URL.
var idFieldPattern = regexp.MustCompile(`"id"\s*:\s*(\d+)`)

// MediaRef is one discovered upload-asset reference.
type MediaRef struct {
	// URL is the exact matched URL string.
	URL string
	// NewID is filled once the asset has been re-imported on the target site.
	NewID string
}

// NormalizeBlob undoes JSON slash escaping so URL scanning sees plain paths.
func NormalizeBlob(blob string) string {
	return strings.ReplaceAll(blob, `\/`, "/")
}

// FindUploadRefs scans a blob for upload-asset URLs. Matching is
// case-insensitive; deduplication is by exact URL string, preserving first
// occurrence order. The second return is the host of the first match — the
// template's source host — or "" when the blob has no references.
func FindUploadRefs(blob string) ([]MediaRef, string) {
	matches := uploadURLPattern.FindAllString(blob, -1)

	refs := make([]MediaRef, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	sourceHost := ""

	for _, match := range matches {
		if _, dup := seen[match]; dup {
			continue
		}

		seen[match] = struct{}{}
		refs = append(refs, MediaRef{URL: match})

		if sourceHost == "" {
			parsed, err := url.Parse(match)
			if err == nil {
				sourceHost = parsed.Host
			}
		}
	}

	return refs, sourceHost
}

// RewriteHost replaces every occurrence of the source host with the target
// domain. Plain substring replacement, applied once.
func RewriteHost(blob, sourceHost, domain string) string {
	if sourceHost == "" || sourceHost == domain {
		return blob
	}

	return strings.ReplaceAll(blob, sourceHost, domain)
}

// RewriteIDs rewrites the numeric id adjacent to each re-imported URL.
//
// For every occurrence of every URL in the mapping, a window of idWindow
// characters on each side is searched for a numeric "id" field: the nearest
// one before the URL wins, then the nearest one after. Only that first match
// is replaced. Occurrences with no adjacent id are left untouched — the
// rewritten URL alone is enough for the builder to resolve the asset.
//
// Returns the rewritten blob and the number of ids replaced.
func RewriteIDs(blob string, urlToID map[string]string) (string, int) {
	hits := 0

	for refURL, newID := range urlToID {
		if newID == "" {
			continue
		}

		blob, hits = rewriteIDsForURL(blob, refURL, newID, hits)
	}

	return blob, hits
}

func rewriteIDsForURL(blob, refURL, newID string, hits int) (string, int) {
	var out strings.Builder

	cursor := 0

	for {
		rel := strings.Index(blob[cursor:], refURL)
		if rel < 0 {
			break
		}

		start := cursor + rel
		end := start + len(refURL)

		// Never search behind the cursor: text already written out must not
		// be rewritten twice.
		windowStart := max(cursor, start-idWindow)
		windowEnd := min(len(blob), end+idWindow)

		// id-before-url: the last id field in the preceding window.
		if loc := lastMatch(blob[windowStart:start]); loc != nil {
			digitStart := windowStart + loc[2]
			digitEnd := windowStart + loc[3]

			out.WriteString(blob[cursor:digitStart])
			out.WriteString(newID)
			out.WriteString(blob[digitEnd:end])

			cursor = end
			hits++

			continue
		}

		// url-before-id: the first id field in the following window.
		if loc := idFieldPattern.FindStringSubmatchIndex(blob[end:windowEnd]); loc != nil {
			digitStart := end + loc[2]
			digitEnd := end + loc[3]

			out.WriteString(blob[cursor:digitStart])
			out.WriteString(newID)

			cursor = digitEnd
			hits++

			continue
		}

		out.WriteString(blob[cursor:end])
		cursor = end
	}

	out.WriteString(blob[cursor:])

	return out.String(), hits
}

// lastMatch returns the submatch indexes of the final id field in s, or nil.
func lastMatch(s string) []int {
	locs := idFieldPattern.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}

	return locs[len(locs)-1]
}
