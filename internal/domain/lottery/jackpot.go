package lottery

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	millionToken   = "million"
	million        = 1_000_000
	centsPerDollar = 100

	contentClass = "content"
	jackpotRow   = 1
)

var (
	errNoContent = errors.New("content block not found")
	errNoTable   = errors.New("content table not found")
	errNoRow     = errors.New("jackpot row not found")
	errNoCell    = errors.New("jackpot cell not found")
	errNoDigits  = errors.New("no digits in jackpot text")
	errOverflow  = errors.New("jackpot amount overflows int64 cents")
)

// ParseJackpot extracts the jackpot amount, in cents, from the home page HTML.
//
// The amount lives in the last cell of the second row of the first table
// directly under <div class="content">. All digits of that cell's text are
// joined into one number of dollars; a "million" suffix scales it.
func ParseJackpot(src []byte) (int64, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return 0, &ParseError{Source: "jackpot", Err: err}
	}

	text, err := jackpotText(doc)
	if err != nil {
		return 0, &ParseError{Source: "jackpot", Err: err}
	}

	cents, err := toCents(strings.ToLower(text))
	if err != nil {
		return 0, &ParseError{Source: "jackpot", Err: err}
	}
	return cents, nil
}

func toCents(text string) (int64, error) {
	isMillion := strings.Contains(text, millionToken)

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0, errNoDigits
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, err
	}

	scale := int64(centsPerDollar)
	if isMillion {
		scale *= million
	}
	if n > math.MaxInt64/scale {
		return 0, errOverflow
	}
	return n * scale, nil
}

func jackpotText(doc *html.Node) (string, error) {
	content := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && attr(n, "class") == contentClass
	})
	if content == nil {
		return "", errNoContent
	}

	var table *html.Node
	for _, c := range childElements(content) {
		if c.DataAtom == atom.Table {
			table = c
			break
		}
	}
	if table == nil {
		return "", errNoTable
	}

	rows := tableRows(table)
	if len(rows) <= jackpotRow {
		return "", errNoRow
	}

	var cells []*html.Node
	for _, c := range childElements(rows[jackpotRow]) {
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return "", errNoCell
	}
	cell := cells[len(cells)-1]

	// The amount is normally wrapped in markup inside the cell; the cell's
	// own label text is ignored when such markup exists. A cell holding only
	// text is read leniently from that text.
	var sb strings.Builder
	inner := childElements(cell)
	if len(inner) == 0 {
		collectText(cell, &sb)
		return sb.String(), nil
	}
	for _, c := range inner {
		collectText(c, &sb)
	}
	return sb.String(), nil
}

// tableRows returns the rows of t in document order, looking through
// implicit and explicit row groups.
func tableRows(t *html.Node) []*html.Node {
	var rows []*html.Node
	for _, c := range childElements(t) {
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for _, r := range childElements(c) {
				if r.DataAtom == atom.Tr {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func childElements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
