package keys

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Image returns the canonical storage key for the photo of a place. The id is
// path-escaped as is, so distinct ids never share a key. The extension of the
// captured file is kept so viewers can sniff the type.
func Image(placeID, src string) string {
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("images/%s%s", url.PathEscape(placeID), ext)
}
