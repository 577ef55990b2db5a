package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/survey-builder/internal/survey"
)

type replayOptions struct {
	part      string
	randomIDs bool
	at        string
	verbose   bool
}

// NewRootCommand builds the surveyctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &replayOptions{}

	root := &cobra.Command{
		Use:   "surveyctl",
		Short: "Replay survey builder command scripts offline",
		Long: `surveyctl applies a YAML script of survey builder commands to a fresh
document and prints the resulting JSON, the same shape the builder's JSON
viewer shows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.randomIDs, "random-ids", false, "generate timestamp-based ids instead of id-1, id-2, ...")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "fix the clock to this RFC3339 time")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every dispatched command to stderr")

	root.AddCommand(newReplayCommand(opts), newCheckCommand(opts), newKindsCommand())
	return root
}

// Execute runs surveyctl with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func newReplayCommand(opts *replayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Apply a script and print the document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := replay(args[0], opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var v any
			switch opts.part {
			case "document", "":
				v = store.Snapshot()
			case "survey":
				v = store.Survey()
			case "responses":
				v = store.Responses()
			default:
				return fmt.Errorf("unknown part %q (want document, survey or responses)", opts.part)
			}

			data, err := survey.MarshalIndented(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&opts.part, "part", "document", "what to print: document, survey or responses")
	return cmd
}

func newCheckCommand(opts *replayOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <script.yaml>",
		Short: "Report required questions left unanswered after a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := replay(args[0], opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			missing := store.MissingRequired()
			if len(missing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all required questions answered")
				return nil
			}
			for _, id := range missing {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return fmt.Errorf("%d required question(s) unanswered", len(missing))
		},
	}
}

func newKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the command types a script may use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range survey.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

func replay(path string, opts *replayOptions, stderr io.Writer) (*survey.Store, error) {
	script, err := LoadScript(path)
	if err != nil {
		return nil, err
	}
	cmds, err := script.Commands()
	if err != nil {
		return nil, err
	}

	factory := survey.Factory{}
	if !opts.randomIDs {
		factory.NewID = sequentialIDs()
	}
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return nil, fmt.Errorf("parse --at: %w", err)
		}
		factory.Now = fixedClock(at)
	}

	logger := zerolog.Nop()
	if opts.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(zerolog.DebugLevel)
	}

	store := survey.NewStore(logger, survey.StoreOptions{Factory: factory})
	for _, c := range cmds {
		store.Apply(c)
	}
	return store, nil
}

