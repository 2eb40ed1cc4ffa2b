package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-vocab-backend/internal/client"
	"github.com/tbourn/go-vocab-backend/internal/schedule"
)

const reviewHelp = `keys: <enter>/f flip  n next  p prev  1-%d answer  s select  b N batch-answer selected  d delete selected  r reload  q quit`

func newReviewCmd(api func() *client.Client) *cobra.Command {
	var opts client.ListOptions
	var all, vietFirst bool
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Step through due cards and answer them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := api()
			steps, err := c.Steps(cmd.Context())
			if err != nil {
				return err
			}
			opts.Due = !all
			deck := client.NewDeck(c, opts)
			deck.EnglishFront = !vietFirst
			s := &session{deck: deck, steps: steps, out: cmd.OutOrStdout()}
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "only this collection")
	cmd.Flags().BoolVar(&all, "all", false, "include cards that are not due yet")
	cmd.Flags().BoolVar(&vietFirst, "vietnamese-first", false, "show the Vietnamese side first")
	return cmd
}

// session drives a Deck from line-oriented input.
type session struct {
	deck  *client.Deck
	steps []schedule.Option
	out   io.Writer
}

func (s *session) run(ctx context.Context, in io.Reader) error {
	if err := s.deck.Load(ctx); err != nil {
		return err
	}
	if s.deck.Len() == 0 {
		fmt.Fprintln(s.out, "Nothing to review.")
		return nil
	}
	fmt.Fprintf(s.out, reviewHelp+"\n", len(s.steps))
	s.show()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		quit, err := s.handle(ctx, strings.TrimSpace(sc.Text()))
		if err != nil {
			// API errors are shown and the session continues.
			if _, ok := asAPIError(err); !ok {
				return err
			}
			fmt.Fprintln(s.out, FormatError(err))
		}
		if quit {
			return nil
		}
		if s.deck.Len() == 0 {
			fmt.Fprintln(s.out, "Deck is empty.")
			return nil
		}
		s.show()
	}
	return sc.Err()
}

func (s *session) handle(ctx context.Context, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "q", "quit":
		return true, nil
	case "", "f":
		s.deck.Flip()
	case "n":
		s.deck.Next()
	case "p":
		s.deck.Prev()
	case "r":
		return false, s.deck.Load(ctx)
	case "s":
		if cur, ok := s.deck.Current(); ok {
			s.deck.Toggle(cur.ID)
		}
	case "b":
		step, perr := s.pick(strings.TrimSpace(arg))
		if perr != nil {
			fmt.Fprintln(s.out, perr)
			return false, nil
		}
		res, err := s.deck.BatchReview(ctx, step)
		if errors.Is(err, client.ErrNothingSelected) {
			fmt.Fprintln(s.out, err)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Updated %d card(s) to step %s, due %s.\n", res.Updated, res.Step, res.Target)
	case "d":
		n, err := s.deck.Delete(ctx)
		if errors.Is(err, client.ErrNothingSelected) {
			fmt.Fprintln(s.out, err)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Deleted %d card(s).\n", n)
	default:
		step, perr := s.pick(cmd)
		if perr != nil {
			fmt.Fprintln(s.out, perr)
			return false, nil
		}
		v, err := s.deck.Review(ctx, step)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "%s → step %s, next review %s\n", v.English, v.Step, v.Target)
		s.deck.Next()
	}
	return false, nil
}

// pick maps a 1-based button number to its step.
func (s *session) pick(arg string) (string, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > len(s.steps) {
		return "", fmt.Errorf("unknown key %q; answers are 1-%d", arg, len(s.steps))
	}
	return s.steps[i-1].Step, nil
}

func (s *session) show() {
	cur, ok := s.deck.Current()
	if !ok {
		return
	}
	mark := " "
	if s.deck.IsSelected(cur.ID) {
		mark = "*"
	}
	fmt.Fprintf(s.out, "\n%s[%d/%d] ", mark, s.deck.Index()+1, s.deck.Len())
	if s.deck.ShowingEnglish() {
		fmt.Fprintf(s.out, "%s", cur.English)
		if cur.IPA != "" {
			fmt.Fprintf(s.out, "  /%s/", strings.Trim(cur.IPA, "/"))
		}
		if cur.Example != "" {
			fmt.Fprintf(s.out, "\n      e.g. %s", cur.Example)
		}
	} else {
		fmt.Fprintf(s.out, "%s", cur.Vietnamese)
		if cur.PartOfSpeech != "" {
			fmt.Fprintf(s.out, " (%s)", cur.PartOfSpeech)
		}
		fmt.Fprintf(s.out, "\n      step %s, due %s", cur.Step, cur.Target)
	}
	fmt.Fprintln(s.out)
}

func asAPIError(err error) (*client.APIError, bool) {
	var ae *client.APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
