package discovery

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Locator resolves artifacts for a set of descriptors. It only ever reads
// the filesystem; given an identical directory listing the result is
// deterministic.
type Locator struct {
	logger *slog.Logger
}

// NewLocator creates a locator. A nil logger discards output.
func NewLocator(logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Locator{logger: logger}
}

// candidate pairs a name with its selection key.
type candidate struct {
	path     string
	name     string
	date     bool
	when     int64 // unix seconds when date is true
	fallback bool
}

// pickLatest selects the candidate with the maximum embedded date. When no
// candidate carries a valid date, selection falls back to the
// lexicographically largest name and every surviving candidate is flagged.
// Date ties break on the lexicographically largest full name.
func pickLatest(cands []candidate) candidate {
	dated := cands[:0:0]
	for _, c := range cands {
		if c.date {
			dated = append(dated, c)
		}
	}
	pool := dated
	fallback := false
	if len(pool) == 0 {
		pool = cands
		fallback = true
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].when != pool[j].when {
			return pool[i].when < pool[j].when
		}
		return pool[i].name < pool[j].name
	})
	best := pool[len(pool)-1]
	best.fallback = fallback
	return best
}

// FindLatestDir returns the subdirectory of root whose name contains token
// (case-insensitively) and carries the latest embedded date. The returned
// fallback flag reports lexicographic selection; callers must record it.
func (l *Locator) FindLatestDir(root, token string) (string, bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false, &Error{Role: token, Root: root, Patterns: []string{"*" + token + "*"}, Err: err}
	}

	var cands []candidate
	for _, e := range entries {
		if !e.IsDir() || !strings.Contains(strings.ToLower(e.Name()), strings.ToLower(token)) {
			continue
		}
		c := candidate{path: filepath.Join(root, e.Name()), name: e.Name()}
		if d, ok := ExtractDate(e.Name()); ok {
			c.date = true
			c.when = d.Unix()
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return "", false, &Error{Role: token, Root: root, Patterns: []string{"*" + token + "*"}}
	}

	best := pickLatest(cands)
	if best.fallback {
		l.logger.Warn("directory selection fell back to lexicographic order",
			"token", token, "selected", best.name)
	} else {
		l.logger.Info("selected directory", "token", token, "selected", best.name)
	}
	return best.path, best.fallback, nil
}

// Discover resolves one artifact per descriptor within dir, or a set of
// artifacts for cycle-expanded descriptors. Keyword categorization
// partitions overlapping glob matches into disjoint roles before
// latest-by-date selection runs within each partition. A required role with
// zero matches fails the whole pass.
func (l *Locator) Discover(dir string, descriptors []Descriptor) ([]Artifact, error) {
	var artifacts []Artifact
	for _, desc := range descriptors {
		matches, err := filepath.Glob(filepath.Join(dir, desc.FileGlob))
		if err != nil {
			return nil, &Error{Role: desc.Role, Root: dir, Patterns: []string{desc.FileGlob}}
		}
		matches = filterByKeywords(matches, desc)
		if len(matches) == 0 {
			return nil, &Error{Role: desc.Role, Root: dir, Patterns: []string{desc.FileGlob}}
		}

		if desc.CyclePattern != "" {
			expanded, err := l.expandCycles(desc, matches)
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, expanded...)
			continue
		}

		cands := make([]candidate, 0, len(matches))
		for _, m := range matches {
			c := candidate{path: m, name: filepath.Base(m)}
			if d, ok := ExtractDate(c.name); ok {
				c.date = true
				c.when = d.Unix()
			}
			cands = append(cands, c)
		}
		best := pickLatest(cands)
		if best.fallback {
			l.logger.Warn("file selection fell back to lexicographic order",
				"role", desc.Role, "selected", best.name)
		} else {
			l.logger.Info("selected file", "role", desc.Role, "selected", best.name)
		}
		art := Artifact{
			Role:     desc.Role,
			Path:     best.path,
			Pattern:  desc.FileGlob,
			Fallback: best.fallback,
		}
		if best.date {
			if d, ok := ExtractDate(best.name); ok {
				art.Date = d
			}
		}
		artifacts = append(artifacts, art)
	}
	return artifacts, nil
}

// expandCycles turns one descriptor into an artifact per file, ordered by
// the numeric cycle token extracted from each filename. Files without a
// parsable cycle are skipped with a warning; an empty result fails.
func (l *Locator) expandCycles(desc Descriptor, matches []string) ([]Artifact, error) {
	re, err := regexp.Compile(desc.CyclePattern)
	if err != nil {
		return nil, &Error{Role: desc.Role, Root: filepath.Dir(matches[0]), Patterns: []string{desc.CyclePattern}}
	}

	var arts []Artifact
	for _, m := range matches {
		name := filepath.Base(m)
		sub := re.FindStringSubmatch(name)
		if len(sub) < 2 {
			l.logger.Warn("skipping file without cycle token", "role", desc.Role, "file", name)
			continue
		}
		cycle, err := strconv.Atoi(sub[1])
		if err != nil {
			l.logger.Warn("skipping file with non-numeric cycle token", "role", desc.Role, "file", name)
			continue
		}
		art := Artifact{Role: desc.Role, Path: m, Pattern: desc.FileGlob, Cycle: cycle}
		if d, ok := ExtractDate(name); ok {
			art.Date = d
		}
		arts = append(arts, art)
	}
	if len(arts) == 0 {
		return nil, &Error{Role: desc.Role, Root: filepath.Dir(matches[0]), Patterns: []string{desc.FileGlob, desc.CyclePattern}}
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].Cycle < arts[j].Cycle })
	l.logger.Info("expanded cycle files", "role", desc.Role, "count", len(arts))
	return arts, nil
}

// filterByKeywords applies the descriptor's keyword routing and exclusions.
func filterByKeywords(matches []string, desc Descriptor) []string {
	out := matches[:0:0]
	for _, m := range matches {
		name := strings.ToLower(filepath.Base(m))
		excluded := false
		for _, ex := range desc.Exclude {
			if strings.Contains(name, strings.ToLower(ex)) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if len(desc.Keywords) > 0 {
			hit := false
			for _, kw := range desc.Keywords {
				if strings.Contains(name, strings.ToLower(kw)) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}
