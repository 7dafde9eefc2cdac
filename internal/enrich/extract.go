package enrich

import (
	"sort"
	"strings"

	"enrich/internal/annotate"
)

// TokenAnnotation is the per-token structure attached under
// spacy_enrichment.token. Field names match the long-standing output format
// consumed by downstream indexers.
type TokenAnnotation struct {
	Index int    `json:"index"`
	Head  int    `json:"head"`
	Text  string `json:"text"`
	Lemma string `json:"lemma"`
	POS   string `json:"pos"`
	Dep   string `json:"dep"`
}

// Part-of-speech tags excluded from token output on top of the stopword and
// punctuation filters.
var excludedPOS = map[string]struct{}{
	"SPACE": {},
	"SYM":   {},
	"X":     {},
}

// Tokens lists every qualifying token in document order: stopwords,
// punctuation, and excluded POS tags are removed, duplicates are kept.
func Tokens(doc annotate.Document) []TokenAnnotation {
	out := make([]TokenAnnotation, 0, len(doc.Tokens))
	for _, token := range doc.Tokens {
		if token.IsStop || token.IsPunct {
			continue
		}
		if _, excluded := excludedPOS[token.POS]; excluded {
			continue
		}
		out = append(out, TokenAnnotation{
			Index: token.Index,
			Head:  token.Head,
			Text:  token.Text,
			Lemma: token.Lemma,
			POS:   token.POS,
			Dep:   token.Dep,
		})
	}
	return out
}

// NounChunks returns the distinct lemma forms of multi-token noun chunks.
// Spans opening with a determiner and single-token spans are dropped. Output
// is a set; it is sorted only to keep serialization deterministic.
func NounChunks(doc annotate.Document) []string {
	seen := make(map[string]struct{}, len(doc.NounChunks))
	for _, chunk := range doc.NounChunks {
		if chunk.LeadingDet || chunk.TokenCount <= 1 {
			continue
		}
		seen[chunk.Lemma] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for lemma := range seen {
		out = append(out, lemma)
	}
	sort.Strings(out)
	return out
}

// SVOTriples returns deduplicated (subject, verb, object) lemma triples. A
// triple is discarded when any single-token slot carries the wrong POS tag:
// subjects and objects must be nouns, verbs must be verbs.
func SVOTriples(doc annotate.Document) [][]string {
	type triple [3]string
	seen := make(map[triple]struct{}, len(doc.SVOs))
	for _, svo := range doc.SVOs {
		if singleTokenMismatch(svo.Subject, "NOUN") ||
			singleTokenMismatch(svo.Verb, "VERB") ||
			singleTokenMismatch(svo.Object, "NOUN") {
			continue
		}
		seen[triple{svo.Subject.Lemma, svo.Verb.Lemma, svo.Object.Lemma}] = struct{}{}
	}
	out := make([][]string, 0, len(seen))
	for t := range seen {
		out = append(out, []string{t[0], t[1], t[2]})
	}
	sort.Slice(out, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

func singleTokenMismatch(slot annotate.SVOSlot, wantPOS string) bool {
	return slot.TokenCount == 1 && slot.RootPOS != wantPOS
}

// NamedEntities groups entity mentions by lemma, collecting the distinct
// entity-type labels seen for each lemma across the document. One entity may
// carry more than one type.
func NamedEntities(doc annotate.Document) map[string][]string {
	labels := make(map[string]map[string]struct{})
	for _, ent := range doc.Entities {
		set, ok := labels[ent.Lemma]
		if !ok {
			set = make(map[string]struct{})
			labels[ent.Lemma] = set
		}
		set[ent.Label] = struct{}{}
	}
	out := make(map[string][]string, len(labels))
	for lemma, set := range labels {
		list := make([]string, 0, len(set))
		for label := range set {
			list = append(list, label)
		}
		sort.Strings(list)
		out[lemma] = list
	}
	return out
}

// Sentences returns sentence lemma strings with the legacy -PRON- placeholder
// removed, matching the historical output format.
func Sentences(doc annotate.Document) []string {
	out := make([]string, 0, len(doc.Sentences))
	for _, sent := range doc.Sentences {
		out = append(out, strings.ReplaceAll(sent, "-PRON-", ""))
	}
	return out
}
