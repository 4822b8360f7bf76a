package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/config"
)

// Commands declare the credentials they need with this annotation.
const credentialsAnnotation = "credentials"

const (
	micaCredentials     = "mica"
	dataciteCredentials = "datacite"
)

// prompter asks for values on out. Secrets are read without echo when in is
// a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

var prompt = newPrompter(os.Stdin, os.Stderr)

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) secret(label string) (string, error) {
	if p.fd < 0 {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return string(b), nil
}

// fill prompts for value when it is empty. An empty answer is an error.
func (p *prompter) fill(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	read := p.line
	if secret {
		read = p.secret
	}
	v, err := read(label)
	if err != nil {
		return err
	}
	if v == "" {
		return fmt.Errorf("%s is required", label)
	}
	*value = v
	return nil
}

func (p *prompter) mica(c *config.Mica) error {
	if err := p.fill(&c.Host, "Mica host", false); err != nil {
		return err
	}
	if err := validator.New().Var(c.Host, "url"); err != nil {
		return fmt.Errorf("mica host %q is not a URL", c.Host)
	}
	if err := p.fill(&c.Username, "Mica username", false); err != nil {
		return err
	}
	return p.fill(&c.Password, "Mica password", true)
}

func (p *prompter) datacite(c *config.DataCite) error {
	if err := p.fill(&c.Username, "DataCite username", false); err != nil {
		return err
	}
	return p.fill(&c.Password, "DataCite password", true)
}

// promptCredentials completes c with whatever credentials cmd declares it
// needs. A dry run never talks to DataCite.
func promptCredentials(cmd *cobra.Command, c *config.Config) error {
	switch cmd.Annotations[credentialsAnnotation] {
	case micaCredentials:
		return prompt.mica(&c.Mica)
	case dataciteCredentials:
		if c.DOI.DryRun {
			return nil
		}
		return prompt.datacite(&c.DataCite)
	}
	return nil
}
