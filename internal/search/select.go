// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/paperdrop/pkg/types"
)

var (
	ErrNotNumeric  = errors.New("not a number")
	ErrOutOfRange  = errors.New("choice out of range")
	ErrNoSelection = errors.New("no paper selected")
)

// ParseChoice validates an operator's answer against n candidates and
// returns the chosen index in [0, n).
func ParseChoice(input string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrNotNumeric
	}
	if i < 0 || i >= n {
		return 0, ErrOutOfRange
	}
	return i, nil
}

// Prompt lists papers on w and reads answers from r until one of them is a
// valid index. There is no retry limit; only end of input stops the loop,
// with ErrNoSelection.
func Prompt(r io.Reader, w io.Writer, papers []types.Paper) (types.Paper, error) {
	if len(papers) == 0 {
		return types.Paper{}, ErrNoMatches
	}

	for i, p := range papers {
		fmt.Fprintf(w, "%d. %s [%s]\n", i, p.DisplayTitle(), p.ShortID)
	}

	last := len(papers) - 1
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "Select a paper [0-%d]: ", last)
		if !sc.Scan() {
			fmt.Fprintln(w)
			if err := sc.Err(); err != nil {
				return types.Paper{}, fmt.Errorf("reading selection: %w", err)
			}
			return types.Paper{}, ErrNoSelection
		}

		i, err := ParseChoice(sc.Text(), len(papers))
		if err != nil {
			fmt.Fprintf(w, "Invalid choice %q (%v): enter a number between 0 and %d.\n",
				strings.TrimSpace(sc.Text()), err, last)
			continue
		}
		return papers[i], nil
	}
}
