// jobctl is a command-line client for the job board. It keeps the login
// session in a credentials file and resolves client paths through the same
// access policy the API enforces.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/jobnexus/jobboard/internal/client/apiclient"
	"github.com/jobnexus/jobboard/internal/client/routing"
	"github.com/jobnexus/jobboard/internal/client/session"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
	"github.com/jobnexus/jobboard/internal/policy"
	"github.com/jobnexus/jobboard/pkg/logger"
)

const usage = `usage: jobctl [flags] <command> [args]

commands:
  login <email>                 log in; the password is read from stdin
  register <email> <first> <last>
                                create an account and log in
  logout                        forget the stored session
  whoami                        print the logged-in identity
  home                          print where the session lands after login
  visit <path>...               resolve client paths against the access policy
  profile [--first NAME] [--last NAME] [--image URL]
                                update the logged-in profile

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	store *session.Store
	gate  *routing.Gate
	in    *bufio.Reader
	out   io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		server      string
		credentials string
		timeout     time.Duration
		verbose     bool
	)
	flags := pflag.NewFlagSet("jobctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.StringVar(&server, "server", envOr("JOBBOARD_SERVER", "http://localhost:8080"), "API base URL")
	flags.StringVar(&credentials, "credentials", defaultCredentialsPath(), "credentials file")
	flags.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log session activity to stderr")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return errors.New("missing command")
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: stderr})

	table, err := policy.Load()
	if err != nil {
		return err
	}

	client := apiclient.New(server, nil)
	store := session.New(
		session.FileCredentials{Path: credentials},
		client,
		log,
		session.WithLanding(table.Redirects.Landing),
	)
	defer store.Close()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	store.Start(reqCtx)

	c := &cli{
		store: store,
		gate:  routing.NewGate(table, store),
		in:    bufio.NewReader(stdin),
		out:   stdout,
	}
	return c.dispatch(reqCtx, rest[0], rest[1:])
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "home":
		return c.home(ctx)
	case "visit":
		return c.visit(ctx, args)
	case "profile":
		return c.profile(ctx, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: jobctl login <email>")
	}
	if _, err := c.store.Wait(ctx); err != nil {
		return err
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}
	user, err := c.store.Login(ctx, args[0], password)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.out, "logged in as %s (%s)\n", user.Email, user.Role)
	return c.home(ctx)
}

func (c *cli) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: jobctl register <email> <first> <last>")
	}
	if _, err := c.store.Wait(ctx); err != nil {
		return err
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}
	user, err := c.store.Register(ctx, ports.RegisterInput{
		Email:     args[0],
		Password:  password,
		FirstName: args[1],
		LastName:  args[2],
	})
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.out, "registered %s (%s)\n", user.Email, user.Role)
	return c.home(ctx)
}

func (c *cli) logout(ctx context.Context) error {
	// Let the restore settle so its result cannot race the logout.
	_, _ = c.store.Wait(ctx)
	fmt.Fprintln(c.out, c.store.Logout())
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	st, err := c.store.Wait(ctx)
	if err != nil {
		return err
	}
	if !st.Authenticated() {
		return errors.New("not logged in")
	}
	u := st.Identity
	fmt.Fprintf(c.out, "%s\t%s\t%s %s\n", u.ID, u.Role, u.FirstName, u.LastName)
	fmt.Fprintln(c.out, u.Email)
	return nil
}

func (c *cli) home(ctx context.Context) error {
	if _, err := c.store.Wait(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, c.gate.Home())
	return nil
}

func (c *cli) visit(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return errors.New("usage: jobctl visit <path>...")
	}
	if _, err := c.store.Wait(ctx); err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(c.out, "%s\t%s\n", p, c.gate.Resolve(p))
	}
	return nil
}

func (c *cli) profile(ctx context.Context, args []string) error {
	var update domain.ProfileUpdate
	flags := pflag.NewFlagSet("profile", pflag.ContinueOnError)
	first := flags.String("first", "", "first name")
	last := flags.String("last", "", "last name")
	image := flags.String("image", "", "profile image URL")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.Changed("first") {
		update.FirstName = first
	}
	if flags.Changed("last") {
		update.LastName = last
	}
	if flags.Changed("image") {
		update.ProfileImage = image
	}

	if _, err := c.store.Wait(ctx); err != nil {
		return err
	}
	user, err := c.store.UpdateProfile(ctx, update)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(c.out, "%s %s\n", user.FirstName, user.LastName)
	return nil
}

func (c *cli) readPassword() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

// describe turns API errors into the server's message.
func describe(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	if errors.Is(err, session.ErrNotAuthenticated) {
		return errors.New("not logged in")
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "jobboard", "credentials.json")
}

var _ session.Backend = (*apiclient.Client)(nil)
