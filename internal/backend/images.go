package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// imageURL resolves one image reference against the API base URL.
// A reference may be an absolute URL, a backend-relative path, a bare image
// id (string or number), or an object carrying either "url" or "id".
// Unrecognised references resolve to "".
func (c *Client) imageURL(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return c.buildImageURL(s)
	case '{':
		var obj struct {
			URL string          `json:"url"`
			ID  json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		if obj.URL != "" {
			return c.buildImageURL(obj.URL)
		}
		return c.imageURL(obj.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return ""
		}
		return c.buildImageURL(n.String())
	}
}

func (c *Client) buildImageURL(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "/"):
		return c.origin + path
	default:
		return c.origin + "/api/images/" + path
	}
}

// imageURLs resolves a JSON array (or a single reference) of images, dropping
// entries that do not resolve.
func (c *Client) imageURLs(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}
	}
	if raw[0] != '[' {
		if u := c.imageURL(raw); u != "" {
			return []string{u}
		}
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if u := c.imageURL(item); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
