package importer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-memo/memo/internal/memoerrors"
)

// parseRepoMap decodes a repo-map JSON document: an array of entries, each
// requiring a path and defaulting language/symbols/content when absent.
func parseRepoMap(data []byte) ([]RepoMapEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, memoerrors.InvalidInput("repo-map file must contain a JSON array: " + err.Error())
	}

	entries := make([]RepoMapEntry, 0, len(raw))
	for i, item := range raw {
		var e RepoMapEntry
		if err := json.Unmarshal(item, &e); err != nil {
			return nil, memoerrors.InvalidInput(fmt.Sprintf("repo-map entry %d: %s", i, err.Error()))
		}
		if strings.TrimSpace(e.Path) == "" {
			return nil, memoerrors.InvalidInput(fmt.Sprintf("repo-map entry %d is missing \"path\"", i))
		}
		if e.Language == "" {
			e.Language = "unknown"
		}
		if e.Symbols == nil {
			e.Symbols = []string{}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// synthesizeContent builds the record content for one repo-map entry:
// "{path} [{language}] {symbols joined by ' '}\n{content}", omitting the
// trailing newline and content when content is empty.
func synthesizeContent(e RepoMapEntry) string {
	header := fmt.Sprintf("%s [%s] %s", e.Path, e.Language, strings.Join(e.Symbols, " "))
	if e.Content == "" {
		return header
	}
	return header + "\n" + e.Content
}
