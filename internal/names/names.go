// Package names maps user-facing table identifiers to on-disk chunk kind
// names and suggests alternatives for near-miss input. Suggestion is
// presentation sugar; the decoder itself only ever sees exact kind names.
package names

import (
	"fmt"
	"sort"
	"strings"

	"example.com/tabedit/internal/toc"
)

var tableKinds = map[string]string{
	"info":     toc.KindInfo,
	"questdb":  toc.KindQuestData,
	"questcmp": toc.KindQuestCampaign,
}

// TableIDs returns the valid user-facing identifiers in sorted order.
func TableIDs() []string {
	ids := make([]string, 0, len(tableKinds))
	for id := range tableKinds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// KindFor returns the on-disk kind name for a valid identifier.
func KindFor(id string) (string, bool) {
	kind, ok := tableKinds[id]
	return kind, ok
}

// Resolve maps an identifier to its chunk kind name. The raw kind name itself
// is also accepted. The error for unknown input carries a did-you-mean hint
// when one is close enough.
func Resolve(id string) (string, error) {
	if kind, ok := tableKinds[id]; ok {
		return kind, nil
	}
	for _, kind := range toc.KindNames() {
		if id == kind {
			return kind, nil
		}
	}
	msg := fmt.Sprintf("unknown table %q (valid tables: %s)", id, strings.Join(TableIDs(), ", "))
	if hints := Suggest(id); len(hints) > 0 {
		msg += fmt.Sprintf(" - did you mean %s?", strings.Join(hints, " or "))
	}
	return "", fmt.Errorf("%s", msg)
}

// matchers are tried in strictly increasing order of desperation; the first
// one that hits anything wins.
var matchers = []func(input, candidate string) bool{
	func(i, c string) bool { return strings.EqualFold(i, c) },
	func(i, c string) bool { return strings.HasPrefix(strings.ToLower(c), strings.ToLower(i)) },
	func(i, c string) bool { return strings.Contains(strings.ToLower(c), strings.ToLower(i)) },
}

// Suggest returns the identifiers that most plausibly match input.
func Suggest(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	for _, match := range matchers {
		var hits []string
		for _, id := range TableIDs() {
			if match(input, id) || match(input, tableKinds[id]) {
				hits = append(hits, id)
			}
		}
		if len(hits) > 0 {
			return hits
		}
	}
	return nil
}
