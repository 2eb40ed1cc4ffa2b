// Package cli implements the vocabctl commands on top of the API client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-vocab-backend/internal/client"
	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/sysutil"
)

// DefaultServer is used when neither --server nor VOCAB_SERVER is set.
const DefaultServer = "http://localhost:8080/api"

// NewRootCmd builds the vocabctl command tree.
func NewRootCmd(version string) *cobra.Command {
	var server string
	api := func() *client.Client { return client.NewClient(server) }

	root := &cobra.Command{
		Use:           "vocabctl",
		Short:         "Review and manage vocabulary from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server",
		sysutil.FirstNonEmpty(os.Getenv("VOCAB_SERVER"), DefaultServer),
		"API base URL (env VOCAB_SERVER)")

	root.AddCommand(
		newListCmd(api),
		newDueCmd(api),
		newAddCmd(api),
		newReviewCmd(api),
		newStepsCmd(api),
		newDeleteCmd(api),
		newExportCmd(api),
		newImportCmd(api),
	)
	return root
}

func newListCmd(api func() *client.Client) *cobra.Command {
	var opts client.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records ordered by target date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := api().List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "text filter, accents optional")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "exact collection name")
	cmd.Flags().BoolVar(&opts.Due, "due", false, "only records due today or earlier")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records (0 = all)")
	return cmd
}

func newDueCmd(api func() *client.Client) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List records due today or earlier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := api().Due(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing due.")
				return nil
			}
			printTable(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records (0 = all)")
	return cmd
}

func newAddCmd(api func() *client.Client) *cobra.Command {
	var in client.NewVocabulary
	var key string
	cmd := &cobra.Command{
		Use:   "add ENGLISH VIETNAMESE",
		Short: "Create a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.English, in.Vietnamese = args[0], args[1]
			if key == "" {
				key = uuid.NewString()
			}
			v, err := api().Create(cmd.Context(), in, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s (step %s, due %s)\n", v.ID, v.English, v.Step, v.Target)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.IPA, "ipa", "", "pronunciation")
	f.StringVar(&in.Example, "example", "", "example sentence")
	f.StringVar(&in.Collection, "collection", "", "collection name")
	f.StringVar(&in.PartOfSpeech, "pos", "", "part of speech")
	f.StringVar(&in.Step, "step", "", `step label, e.g. "3-6" (default "0")`)
	f.StringVar(&in.Target, "target", "", "review date YYYY-MM-DD, if the server allows overrides")
	f.StringVar(&key, "idempotency-key", "", "retry key (random when empty)")
	return cmd
}

func newStepsCmd(api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "Show the review buttons and their steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := api().Steps(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, o := range opts {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, o.Label, o.Step)
			}
			return tw.Flush()
		},
	}
}

func newDeleteCmd(api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete records by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := api().Delete(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s).\n", n)
			return nil
		},
	}
}

func newExportCmd(api func() *client.Client) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every record as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := api().Export(cmd.Context(), f); err != nil {
				_ = f.Close()
				_ = os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "vocabulary.xlsx", "destination file")
	return cmd
}

func newImportCmd(api func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore records from an xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := api().Import(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Created %d, skipped %d.\n", res.Created, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(w, "  "+e)
			}
			return nil
		},
	}
}

func printTable(w io.Writer, items []domain.Vocabulary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tSTEP\tENGLISH\tVIETNAMESE\tCOLLECTION\tID")
	for _, v := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", v.Target, v.Step, v.English, v.Vietnamese, v.Collection, v.ID)
	}
	_ = tw.Flush()
}

// Execute runs root with ctx; used by main and tests.
func Execute(ctx context.Context, root *cobra.Command, args []string, out io.Writer, in io.Reader) error {
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)
	return root.ExecuteContext(ctx)
}

// FormatError renders err for the terminal, spelling out API errors.
func FormatError(err error) string {
	if ae, ok := asAPIError(err); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "error: %s", ae.Message)
		if ae.Code != "" {
			fmt.Fprintf(&b, " [%s, HTTP %d]", ae.Code, ae.Status)
		} else {
			fmt.Fprintf(&b, " [HTTP %d]", ae.Status)
		}
		if ae.RequestID != "" {
			fmt.Fprintf(&b, " request_id=%s", ae.RequestID)
		}
		return b.String()
	}
	return "error: " + err.Error()
}
