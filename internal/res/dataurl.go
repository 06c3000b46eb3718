package res

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errBadDataURL = errors.New("invalid data URL")

// parseDataURL decodes an RFC 2397 data URL, e.g.
//
//	data:image/png;base64,<base64>
//	data:text/css,body%20%7Bmargin%3A0%7D
func parseDataURL(u string) (*Resource, error) {
	s, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return nil, errBadDataURL
	}
	meta, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, errBadDataURL
	}

	mimeType := "text/plain"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "":
			mimeType = strings.ToLower(part)
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errBadDataURL, err)
			}
		}
		data = decoded
	} else if d, err := url.PathUnescape(payload); err == nil {
		data = []byte(d)
	} else {
		data = []byte(payload)
	}

	return &Resource{
		URL:      shorten(u),
		Data:     data,
		MimeType: mimeType,
		Type:     determineResourceType(mimeType, ""),
	}, nil
}
