package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	hiddenCell = '_'
	wordGap    = "   "
)

// answerWord is one word of the answer with every letter already styled.
type answerWord struct {
	letters []string
	widths  []int
}

func (w answerWord) width() int {
	total := max(len(w.letters)-1, 0)
	for _, n := range w.widths {
		total += n
	}
	return total
}

func (w answerWord) render() string {
	return strings.Join(w.letters, " ")
}

type span struct {
	start int
	end   int
}

// wordSpans finds the runs of non-space cells.
func wordSpans(cells []rune) []span {
	var spans []span
	for i := 0; i < len(cells); {
		if cells[i] == ' ' {
			i++
			continue
		}
		j := i
		for j < len(cells) && cells[j] != ' ' {
			j++
		}
		spans = append(spans, span{i, j})
		i = j
	}
	return spans
}

// activeSpan is the word holding the cursor. A cursor on a gap selects the
// word after it.
func activeSpan(spans []span, cursor int) (span, bool) {
	if cursor < 0 || len(spans) == 0 {
		return span{}, false
	}
	for _, s := range spans {
		if cursor < s.end {
			return s, true
		}
	}
	return spans[len(spans)-1], true
}

// answerWords styles the answer cells. Hidden letters show as underscores,
// hidden letters of the word being guessed are highlighted and the cursor
// marks the next letter. wrong paints the cursor red.
func answerWords(cells []rune, cursor int, wrong bool) []answerWord {
	spans := wordSpans(cells)
	active, hasActive := activeSpan(spans, cursor)
	words := make([]answerWord, 0, len(spans))
	for _, s := range spans {
		var w answerWord
		for i := s.start; i < s.end; i++ {
			r, style := cells[i], correctStyle
			if r == 0 {
				r, style = hiddenCell, pendingStyle
				if hasActive && s == active {
					style = currentWordStyle
				}
			}
			if i == cursor {
				style = cursorStyle
				if wrong {
					style = incorrectStyle.Underline(true)
				}
			}
			w.letters = append(w.letters, style.Render(string(r)))
			w.widths = append(w.widths, runewidth.RuneWidth(r))
		}
		words = append(words, w)
	}
	return words
}

// layoutAnswer places words on lines of at most width cells. A word is only
// split when it cannot fit on a line by itself.
func layoutAnswer(words []answerWord, width int) string {
	var lines []string
	var line strings.Builder
	used := 0
	flush := func() {
		if used > 0 {
			lines = append(lines, line.String())
		}
		line.Reset()
		used = 0
	}
	for _, w := range splitWide(words, width) {
		n := w.width()
		if used > 0 && width > 0 && used+len(wordGap)+n > width {
			flush()
		}
		if used > 0 {
			line.WriteString(wordGap)
			used += len(wordGap)
		}
		line.WriteString(w.render())
		used += n
	}
	flush()
	return strings.Join(lines, "\n")
}

func splitWide(words []answerWord, width int) []answerWord {
	if width <= 0 {
		return words
	}
	out := make([]answerWord, 0, len(words))
	for _, w := range words {
		for w.width() > width && len(w.letters) > 1 {
			n, used := 0, 0
			for n < len(w.letters) {
				next := used + w.widths[n]
				if n > 0 {
					next++
				}
				if next > width {
					break
				}
				used = next
				n++
			}
			n = max(n, 1)
			out = append(out, answerWord{letters: w.letters[:n], widths: w.widths[:n]})
			w = answerWord{letters: w.letters[n:], widths: w.widths[n:]}
		}
		out = append(out, w)
	}
	return out
}
