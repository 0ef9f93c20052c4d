package filesystem

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

const octetStream = "application/octet-stream"

var preferredExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"text/plain":      ".txt",
	"text/csv":        ".csv",
	"text/html":       ".html",
	"audio/mpeg":      ".mp3",
	"video/mp4":       ".mp4",
}

// ExtFromMIME returns the usual extension for a content type, or "".
func ExtFromMIME(contentType string) string {
	ct := normalizeMIME(contentType)
	if ext, ok := preferredExt[ct]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(ct); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// MatchesMIME reports whether contentType matches one of the patterns.
// "image/*" matches any image type.
func MatchesMIME(contentType string, patterns ...string) bool {
	ct := normalizeMIME(contentType)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if ct == p {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func normalizeMIME(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

// DetectMIME sniffs the content type from the first 512 bytes of r and
// returns a reader replaying the whole content.
func DetectMIME(r io.Reader) (string, io.Reader) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return octetStream, r
		}
		return octetStream, bytes.NewReader(nil)
	}
	head := buf[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r)
}
