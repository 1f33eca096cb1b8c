package lyrics

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// LastLineTail is how long the final line stays active.
const LastLineTail = 5 * time.Second

var (
	timeTag = regexp.MustCompile(`^\[(\d{1,3}):(\d{1,2})(?:[.:](\d{1,3}))?\]`)
	metaTag = regexp.MustCompile(`^\[([a-zA-Z#]+):\s*(.*?)\s*\]\s*$`)
)

// Meta holds the ID tags of an LRC file.
type Meta struct {
	Title  string
	Artist string
	Album  string
	Offset time.Duration // positive values make lines appear earlier
}

// Document is a parsed LRC file.
type Document struct {
	Meta   Meta
	Script domain.Script
}

type stamped struct {
	at   time.Duration
	text string
	seq  int
}

// Parse reads LRC content and returns its script. Lines that are not
// understood are skipped; content with no timed lines gives an empty script.
// Only read errors are returned.
func Parse(r io.Reader) (domain.Script, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Script, nil
}

// ParseFile parses the LRC file at path.
func ParseFile(path string) (domain.Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lyrics: %w", err)
	}
	defer f.Close()

	script, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read lyrics %s: %w", path, err)
	}
	return script, nil
}

// ParseDocument reads LRC content including its ID tags.
//
// A line may carry several time tags ("[00:12.00][01:02.50]chorus").
// Each line ends where the next one starts; the last ends LastLineTail
// after its start. Empty timed lines only mark where the previous line ends.
// A trailing parenthesized part of the text becomes the translation.
func ParseDocument(r io.Reader) (*Document, error) {
	doc := &Document{}
	var entries []stamped

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" {
			continue
		}

		var stamps []time.Duration
		for {
			m := timeTag.FindStringSubmatchIndex(line)
			if m == nil {
				break
			}
			at, ok := parseStamp(line[m[2]:m[3]], line[m[4]:m[5]], submatch(line, m, 6))
			if ok {
				stamps = append(stamps, at)
			}
			line = line[m[1]:]
		}

		if len(stamps) == 0 {
			if mm := metaTag.FindStringSubmatch(line); mm != nil {
				applyMeta(&doc.Meta, mm[1], mm[2])
			}
			continue
		}

		text := strings.TrimSpace(line)
		for _, at := range stamps {
			entries = append(entries, stamped{at: at, text: text, seq: len(entries)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b stamped) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	for i, e := range entries {
		if e.text == "" {
			continue
		}

		start := max(e.at-doc.Meta.Offset, 0)
		end := start + LastLineTail
		if i+1 < len(entries) {
			end = max(entries[i+1].at-doc.Meta.Offset, start)
		}

		text, translation := splitTranslation(e.text)
		doc.Script = append(doc.Script, domain.TimedLine{
			Start:       start,
			End:         end,
			Text:        text,
			Translation: translation,
		})
	}

	return doc, nil
}

func submatch(s string, m []int, i int) string {
	if m[i] < 0 {
		return ""
	}
	return s[m[i]:m[i+1]]
}

func parseStamp(minutes, seconds, fraction string) (time.Duration, bool) {
	mins, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, false
	}
	secs, err := strconv.Atoi(seconds)
	if err != nil || secs >= 60 {
		return 0, false
	}

	var frac time.Duration
	if fraction != "" {
		n, err := strconv.Atoi(fraction)
		if err != nil {
			return 0, false
		}
		switch len(fraction) {
		case 1:
			frac = time.Duration(n) * 100 * time.Millisecond
		case 2:
			frac = time.Duration(n) * 10 * time.Millisecond
		default:
			frac = time.Duration(n) * time.Millisecond
		}
	}

	return time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second + frac, true
}

func applyMeta(meta *Meta, key, value string) {
	switch strings.ToLower(key) {
	case "ti":
		meta.Title = value
	case "ar":
		meta.Artist = value
	case "al":
		meta.Album = value
	case "offset":
		if ms, err := strconv.Atoi(strings.TrimPrefix(value, "+")); err == nil {
			meta.Offset = time.Duration(ms) * time.Millisecond
		}
	}
}

// splitTranslation splits "text (translation)" into its two parts.
// Text that is entirely parenthesized is kept as is.
func splitTranslation(s string) (string, string) {
	if !strings.HasSuffix(s, ")") {
		return s, ""
	}
	open := strings.LastIndex(s, "(")
	if open <= 0 {
		return s, ""
	}
	text := strings.TrimSpace(s[:open])
	if text == "" {
		return s, ""
	}
	return text, strings.TrimSpace(s[open+1 : len(s)-1])
}
