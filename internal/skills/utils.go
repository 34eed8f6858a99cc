package skills

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepository extracts owner and repo name from "owner/repo" or a
// github.com URL such as https://github.com/owner/repo/tree/main.
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	path := s
	if strings.Contains(s, "://") {
		parsedURL, err := url.Parse(s)
		if err != nil {
			return "", "", fmt.Errorf("invalid URL: %v", err)
		}
		if parsedURL.Host != "github.com" && parsedURL.Host != "www.github.com" {
			return "", "", fmt.Errorf("not a GitHub URL: %s", s)
		}
		path = parsedURL.Path
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: want owner/repo", s)
	}
	if !strings.Contains(s, "://") && len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository %q: want owner/repo", s)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
