package puzzle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gitrdm/slotfd/pkg/slotfd"
)

type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func (lr *lineReader) next(what string) (string, error) {
	if !lr.scanner.Scan() {
		if err := lr.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", &ParseError{Line: lr.line + 1, Msg: "unexpected end of input, expected " + what}
	}
	lr.line++
	return lr.scanner.Text(), nil
}

func (lr *lineReader) count(what string) (int, error) {
	text, err := lr.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, &ParseError{Line: lr.line, Msg: fmt.Sprintf("%s must be a non-negative integer, got %q", what, strings.TrimSpace(text))}
	}
	return n, nil
}

func parseText(r io.Reader) (*slotfd.Problem, error) {
	lr := &lineReader{scanner: bufio.NewScanner(r)}

	slots, err := lr.count("slot count")
	if err != nil {
		return nil, err
	}
	if slots > MaxSlots {
		return nil, &ParseError{Line: lr.line, Msg: fmt.Sprintf("slot count %d exceeds the maximum of %d", slots, MaxSlots)}
	}
	wanted, err := lr.next("wanted items")
	if err != nil {
		return nil, err
	}
	groups, err := lr.count("group count")
	if err != nil {
		return nil, err
	}

	p := &slotfd.Problem{
		Slots:  slots,
		Wanted: strings.Fields(wanted),
	}
	// The declared count is untrusted; a short file ends with a ParseError.
	if groups <= 1024 {
		p.Groups = make([]slotfd.Group, 0, groups)
	}
	for i := 0; i < groups; i++ {
		slotLine, err := lr.next(fmt.Sprintf("slots of group %d", i+1))
		if err != nil {
			return nil, err
		}
		var grp slotfd.Group
		for _, tok := range strings.Fields(slotLine) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &ParseError{Line: lr.line, Msg: fmt.Sprintf("slot %q is not an integer", tok)}
			}
			grp.Slots = append(grp.Slots, v)
		}

		itemLine, err := lr.next(fmt.Sprintf("items of group %d", i+1))
		if err != nil {
			return nil, err
		}
		grp.Items = strings.Fields(itemLine)
		p.Groups = append(p.Groups, grp)
	}
	return p, nil
}
