package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/sip"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run sanity checks against one raw SIP message read from a file",
	Long: `check parses a single raw SIP message (as captured on the wire,
CRLF line endings) and prints its structure and every sanity violation.
Exits non-zero when the message fails a check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		payload, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read message file: %w", err)
		}
		violations, err := runCheck(cmd.OutOrStdout(), payload, cfg)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return fmt.Errorf("%d sanity violation(s)", len(violations))
		}
		return nil
	},
}

// runCheck parses a payload, prints the message structure and returns
// the sanity violations.
func runCheck(w io.Writer, payload []byte, cfg *config.Config) ([]sip.Violation, error) {
	msg, err := sip.Parse(payload)
	if err != nil {
		return nil, err
	}

	if rl, err := msg.Request(); err == nil {
		fmt.Fprintf(w, "request:  %s %s %s\n",
			rl.Method.String(), rl.RequestURI.String(), rl.Version.String())
	} else if st, err := msg.Response(); err == nil {
		fmt.Fprintf(w, "response: %s %d %s\n",
			st.Version.String(), st.Code, st.Reason.String())
	}
	if callID, err := msg.CallID(); err == nil {
		fmt.Fprintf(w, "call-id:  %s\n", callID.Value.String())
	}
	if from, err := msg.From(); err == nil {
		fmt.Fprintf(w, "from:     %s\n", from.URI().String())
	}
	if to, err := msg.To(); err == nil {
		fmt.Fprintf(w, "to:       %s\n", to.URI().String())
	}
	fmt.Fprintf(w, "initial:  %v\n", msg.IsInitial())
	fmt.Fprintf(w, "body:     %d bytes\n", bodyLen(msg))

	checker := sip.NewChecker(cfg.Sanity.ProxyRequireExtensions...)
	violations := checker.Check(msg)
	for _, v := range violations {
		fmt.Fprintf(w, "%s\n", v)
	}
	return violations, nil
}

func bodyLen(msg *sip.Message) int {
	if !msg.HasContent() {
		return 0
	}
	body, err := msg.Content()
	if err != nil {
		return 0
	}
	return body.Length()
}
