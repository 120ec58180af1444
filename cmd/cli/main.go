// Command ck is a CLI client for the contact-keeper service.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/and161185/contact-keeper/internal/client"
	"github.com/and161185/contact-keeper/internal/convert"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const usageText = `ck CLI
Usage:
  ck [-addr URL] [-json] <cmd> [args]

Commands:
  version
  register  -name <name> -email <email> -p <password|->
  login     -email <email> -p <password|->          (saves token)
  logout                                           (discards token)
  list      [-q text] [-fav] [-tag t]
  tags
  add       -name <name> [-phone] [-email] [-notes] [-tags a,b] [-fav]
  edit      -id <id> [-name] [-phone] [-email] [-notes] [-tags a,b] [-fav=true|false]
  fav       -id <id>                               (toggle favourite)
  rm        -id <id>
  health    -grpc HOST:PORT [-service name]
`

var errUsage = errors.New("usage")

type cli struct {
	addr   string
	asJSON bool
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// main dispatches subcommands; all output goes to stdout, diagnostics to stderr.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	err := c.run(ctx, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	global := flag.NewFlagSet("ck", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	addr := global.String("addr", envOr("CK_ADDR", "http://localhost:5000"), "server base URL")
	asJSON := global.Bool("json", false, "print JSON instead of a table")
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() < 1 {
		return errUsage
	}
	c.addr, c.asJSON = *addr, *asJSON
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(c.stdout, "ck %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return c.register(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if err := client.ClearToken(); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "logged out")
		return nil
	case "list":
		return c.list(ctx, rest)
	case "tags":
		return c.tags(ctx)
	case "add":
		return c.add(ctx, rest)
	case "edit":
		return c.edit(ctx, rest)
	case "fav":
		return c.fav(ctx, rest)
	case "rm":
		return c.rm(ctx, rest)
	case "health":
		return c.health(ctx, rest)
	default:
		return errUsage
	}
}

// ---- auth ----

func (c *cli) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	pw := fs.String("p", "", "password ('-' reads a line from stdin)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	password, err := c.password(*pw)
	if err != nil {
		return err
	}
	u, err := client.New(c.addr).Register(ctx, *name, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "registered %s <%s>\n", u.Name, u.Email)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email")
	pw := fs.String("p", "", "password ('-' reads a line from stdin)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	password, err := c.password(*pw)
	if err != nil {
		return err
	}
	tok, err := client.New(c.addr).Login(ctx, *email, password)
	if err != nil {
		return err
	}
	if err := client.SaveToken(tok, *email); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

// ---- contacts ----

func (c *cli) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	q := fs.String("q", "", "search name, email, tags (any case) and phone")
	fav := fs.Bool("fav", false, "favourites only")
	tag := fs.String("tag", "", "exact tag")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	api, err := c.authed()
	if err != nil {
		return err
	}
	all, err := api.List(ctx)
	if err != nil {
		return err
	}
	return c.printContacts(client.Filter(all, *q, *fav, *tag))
}

func (c *cli) tags(ctx context.Context) error {
	api, err := c.authed()
	if err != nil {
		return err
	}
	all, err := api.List(ctx)
	if err != nil {
		return err
	}
	tags := client.Tags(all)
	if c.asJSON {
		return c.printJSON(tags)
	}
	for _, t := range tags {
		fmt.Fprintln(c.stdout, t)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	in := contactFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	api, err := c.authed()
	if err != nil {
		return err
	}
	out, err := api.Create(ctx, in.input(setFlags(fs), true))
	if err != nil {
		return err
	}
	return c.printContacts([]convert.Contact{out})
}

func (c *cli) edit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit")
	in := contactFlags(fs)
	id := fs.String("id", "", "contact id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		return errors.New("edit: need -id")
	}
	body := in.input(setFlags(fs), false)
	api, err := c.authed()
	if err != nil {
		return err
	}
	out, err := api.Update(ctx, *id, body)
	if err != nil {
		return err
	}
	return c.printContacts([]convert.Contact{out})
}

func (c *cli) fav(ctx context.Context, args []string) error {
	fs := newFlagSet("fav")
	id := fs.String("id", "", "contact id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		return errors.New("fav: need -id")
	}
	api, err := c.authed()
	if err != nil {
		return err
	}
	all, err := api.List(ctx)
	if err != nil {
		return err
	}
	for _, ct := range all {
		if ct.ID != *id {
			continue
		}
		next := !ct.IsFavorite
		out, err := api.Update(ctx, *id, convert.ContactInput{IsFavorite: &next})
		if err != nil {
			return err
		}
		return c.printContacts([]convert.Contact{out})
	}
	return fmt.Errorf("fav: contact %s not found", *id)
}

func (c *cli) rm(ctx context.Context, args []string) error {
	fs := newFlagSet("rm")
	id := fs.String("id", "", "contact id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		return errors.New("rm: need -id")
	}
	api, err := c.authed()
	if err != nil {
		return err
	}
	if err := api.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Deleted")
	return nil
}

// ---- ops ----

func (c *cli) health(ctx context.Context, args []string) error {
	fs := newFlagSet("health")
	addr := fs.String("grpc", "localhost:5001", "gRPC health address")
	svc := fs.String("service", "", "service name (empty = overall)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	cc, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer cc.Close()

	resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{Service: *svc})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, resp.GetStatus().String())
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return errors.New("not serving")
	}
	return nil
}

// ---- helpers ----

type contactInput struct {
	name, phone, email, notes, tags *string
	fav                             *bool
}

func contactFlags(fs *flag.FlagSet) *contactInput {
	in := &contactInput{
		name:  fs.String("name", "", "name"),
		phone: fs.String("phone", "", "phone"),
		email: fs.String("email", "", "email"),
		notes: fs.String("notes", "", "notes"),
		tags:  fs.String("tags", "", "comma-separated tags"),
		fav:   fs.Bool("fav", false, "favourite"),
	}
	return in
}

// input builds the request body. Unless all is set only flags present in set are sent.
func (in *contactInput) input(set map[string]bool, all bool) convert.ContactInput {
	var out convert.ContactInput
	pick := func(name string, v *string) *string {
		if all || set[name] {
			return v
		}
		return nil
	}
	out.Name = pick("name", in.name)
	out.Phone = pick("phone", in.phone)
	out.Email = pick("email", in.email)
	out.Notes = pick("notes", in.notes)
	if all || set["tags"] {
		t := splitTags(*in.tags)
		out.Tags = &t
	}
	if all || set["fav"] {
		out.IsFavorite = in.fav
	}
	return out
}

func splitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (c *cli) authed() (*client.Client, error) {
	tok, err := client.LoadToken()
	if err != nil {
		return nil, err
	}
	return client.New(c.addr, client.WithToken(tok)), nil
}

func (c *cli) password(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) printContacts(cs []convert.Contact) error {
	if c.asJSON {
		return c.printJSON(cs)
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tTAGS\tFAV")
	for _, ct := range cs {
		star := ""
		if ct.IsFavorite {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			ct.ID, ct.Name, ct.Phone, ct.Email, strings.Join(ct.Tags, ","), star)
	}
	return tw.Flush()
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
