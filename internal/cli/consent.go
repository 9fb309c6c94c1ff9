package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/cli/formatter"
)

// promptConsent shows the Google consent URL and asks for the code the
// user is given after granting access.
type promptConsent struct {
	interactive func() bool
	in          io.Reader
	out         io.Writer
}

func newPromptConsent(interactive func() bool, in io.Reader, out io.Writer) *promptConsent {
	return &promptConsent{interactive: interactive, in: in, out: out}
}

func (p *promptConsent) RequestCode(ctx context.Context, authURL string) (string, error) {
	if p.interactive == nil || !p.interactive() {
		return "", fmt.Errorf("%w: no terminal to ask for consent, run `mediasheet auth login` first", auth.ErrConsentBlocked)
	}

	fmt.Fprintf(p.out, "%s\nOpen this address and grant spreadsheet access:\n\n  %s\n\n",
		formatter.Header("Google Sheets access"), authURL)

	var code string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Authorization code").
				Description("Paste the code shown after granting access.").
				Value(&code).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("code is required")
					}
					return nil
				}),
		),
	).WithInput(p.in).WithOutput(p.out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", auth.ErrConsentDenied
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %w", auth.ErrConsentBlocked, err)
	}
	return strings.TrimSpace(code), nil
}
